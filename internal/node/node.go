// Package node wires the discovery, messaging, and transfer services
// around one shared KeyPair, PeerRegistry, and event bus into the
// single lifecycle an external shell drives, generalizing the
// teacher's ChatService (pkg/chat/chatservice.go) - which wires
// together discovery.DiscoveryService and chat.ConnectionManager -
// to the three-component pipeline spec.md describes.
package node

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"lanchat/internal/cryptoengine"
	"lanchat/internal/discovery"
	"lanchat/internal/event"
	"lanchat/internal/logging"
	"lanchat/internal/messaging"
	"lanchat/internal/peer"
	"lanchat/internal/transfer"
	"lanchat/internal/types"
)

// sessionNamespace seeds the deterministic per-pair session id derived
// in sessionIDFor; any fixed UUID works as long as every node uses the
// same one, so both ends of a pair derive the same id; it need not be
// globally registered.
var sessionNamespace = uuid.NameSpaceOID

// sessionIDFor derives the SessionId two peers share for their 1:1
// conversation: a name-based v5 UUID over the pair's UserIds sorted
// into a canonical order, so both ends compute the same id regardless
// of who initiated. spec.md's control API names a Message's
// SessionId but never a session-establishment operation, since
// sessions here are implicit in the pairing rather than negotiated.
func sessionIDFor(a, b types.UserId) types.SessionId {
	lo, hi := a, b
	if bytes.Compare(a[:], b[:]) > 0 {
		lo, hi = b, a
	}
	data := append(append([]byte(nil), lo[:]...), hi[:]...)
	return uuid.NewSHA1(sessionNamespace, data)
}

var log = logging.For("node")

// Config holds the knobs needed to bring up a Node.
type Config struct {
	Username    string
	DisplayName string
	TCPPort     int
	DownloadDir string
}

// Node is the top-level object: one identity, one registry, one event
// bus, three running services.
type Node struct {
	Profile  types.UserProfile
	KeyPair  *cryptoengine.KeyPair
	Registry *peer.Registry
	Bus      *event.Bus

	discoverySvc *discovery.Service
	messagingSvc *messaging.Server
	transferSvc  *transfer.Service
}

// New generates an identity and wires up, but does not start, every
// component.
func New(cfg Config) (*Node, error) {
	if cfg.TCPPort == 0 {
		cfg.TCPPort = messaging.Port
	}

	keypair, err := cryptoengine.Generate()
	if err != nil {
		return nil, err
	}

	profile := types.NewUserProfile(cfg.Username, cfg.DisplayName)
	registry := peer.NewRegistry()
	bus := event.NewBus()

	pubPEM, err := keypair.ExportPublicKeyPEM()
	if err != nil {
		return nil, err
	}

	discoverySvc, err := discovery.New(profile, cfg.TCPPort, pubPEM, registry, bus)
	if err != nil {
		return nil, err
	}

	messagingSvc := messaging.NewServer(profile, keypair, registry, bus)
	transferSvc := transfer.NewService(profile.UserID, registry, bus, cfg.DownloadDir)

	return &Node{
		Profile:      profile,
		KeyPair:      keypair,
		Registry:     registry,
		Bus:          bus,
		discoverySvc: discoverySvc,
		messagingSvc: messagingSvc,
		transferSvc:  transferSvc,
	}, nil
}

// Start brings up messaging, transfer, and discovery, in that order so
// discovery's initial announce reaches peers only once this node can
// actually accept connections from them.
func (n *Node) Start(ctx context.Context) error {
	if err := n.messagingSvc.Start(); err != nil {
		return fmt.Errorf("starting messaging: %w", err)
	}
	if err := n.transferSvc.Start(); err != nil {
		n.messagingSvc.Stop()
		return fmt.Errorf("starting transfer: %w", err)
	}
	if err := n.discoverySvc.Start(ctx); err != nil {
		n.messagingSvc.Stop()
		n.transferSvc.Stop()
		return fmt.Errorf("starting discovery: %w", err)
	}

	log.WithField("user", n.Profile.Username).Info("node started")
	return nil
}

// Stop tears down every component and closes the event bus.
func (n *Node) Stop() error {
	var firstErr error
	if err := n.discoverySvc.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := n.messagingSvc.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := n.transferSvc.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	n.Bus.Close()
	return firstErr
}

// ConnectToPeer dials a known peer's messaging port.
func (n *Node) ConnectToPeer(peerID types.UserId) error {
	p, ok := n.Registry.Get(peerID)
	if !ok {
		return types.PeerNotFoundError(peerID.String())
	}
	return n.messagingSvc.Connect(peerID, p.Address)
}

// SendMessage sends an encrypted text message to a connected peer,
// matching spec.md §6's control API shape: send_text(recipient,
// content) -> Message. The session id is derived from the peer pair
// rather than taken as a caller argument, since the core has no
// separate session-establishment operation.
func (n *Node) SendMessage(recipientID types.UserId, content string) (types.Message, error) {
	sessionID := sessionIDFor(n.Profile.UserID, recipientID)
	msg := types.NewTextMessage(sessionID, n.Profile.UserID, recipientID, content)
	if err := n.messagingSvc.SendText(recipientID, msg); err != nil {
		msg.Status = types.StatusFailed
		return msg, err
	}
	msg.Status = types.StatusSent
	return msg, nil
}

// SendFile begins an outbound file transfer to a peer.
func (n *Node) SendFile(recipientID types.UserId, filePath string) (types.TransferId, error) {
	return n.transferSvc.SendFile(recipientID, filePath)
}

// AcceptTransfer accepts a pending inbound file transfer.
func (n *Node) AcceptTransfer(transferID types.TransferId) error {
	return n.transferSvc.AcceptTransfer(transferID)
}

// RejectTransfer rejects a pending inbound file transfer.
func (n *Node) RejectTransfer(transferID types.TransferId, reason string) error {
	return n.transferSvc.RejectTransfer(transferID, reason)
}

// StartSending begins streaming chunks for an accepted outbound
// transfer.
func (n *Node) StartSending(transferID types.TransferId, filePath string) error {
	return n.transferSvc.StartSending(transferID, filePath)
}

// Peers returns a snapshot of every known peer.
func (n *Node) Peers() []peer.Peer {
	return n.Registry.All()
}

// UpdateStatus changes this node's presence status and carries the
// change into future discovery announcements and heartbeats.
func (n *Node) UpdateStatus(newStatus types.UserStatus) {
	n.Profile.Status = newStatus
	n.discoverySvc.UpdateStatus(newStatus)
}

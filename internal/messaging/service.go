package messaging

import (
	"fmt"
	"net"

	"lanchat/internal/cryptoengine"
	"lanchat/internal/event"
	"lanchat/internal/logging"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

// Port is the fixed TCP port the messaging transport listens on.
const Port = 37843

var log = logging.For("messaging")

// Server accepts and originates peer connections, performs the
// handshake, routes decoded messages to events, and exposes SendText
// for outbound encrypted application messages. It generalizes the
// teacher's ChatService/ConnectionManager pairing (pkg/chat/
// chatservice.go, communication.go) to the handshake-then-frame
// protocol and hybrid encryption spec.md requires.
type Server struct {
	profile  types.UserProfile
	keypair  *cryptoengine.KeyPair
	registry *peer.Registry
	bus      *event.Bus
	pool     *Pool

	listener net.Listener
}

// NewServer builds a messaging server bound to the given identity.
func NewServer(profile types.UserProfile, keypair *cryptoengine.KeyPair, registry *peer.Registry, bus *event.Bus) *Server {
	return &Server{
		profile:  profile,
		keypair:  keypair,
		registry: registry,
		bus:      bus,
		pool:     NewPool(),
	}
}

// Start opens the listening socket and begins accepting connections.
func (s *Server) Start() error {
	return s.startOn(fmt.Sprintf(":%d", Port))
}

func (s *Server) startOn(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return types.NetworkError("failed to start messaging listener", err)
	}
	s.listener = ln
	go s.acceptLoop()
	return nil
}

// ListenAddr returns the listener's bound address, useful for tests
// that bind an ephemeral port.
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every live connection.
func (s *Server) Stop() error {
	if s.listener != nil {
		s.listener.Close()
	}
	s.pool.CloseAll()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if isClosed(err) {
				return
			}
			log.WithError(err).Warn("accept error")
			continue
		}
		go s.handleInbound(conn)
	}
}

func (s *Server) handleInbound(raw net.Conn) {
	conn := newConnection(raw)

	peerID, err := s.acceptHandshake(conn)
	if err != nil {
		log.WithError(err).Debug("inbound handshake failed")
		conn.Close()
		return
	}

	s.pool.Put(peerID, conn)
	if p, ok := s.registry.Get(peerID); ok {
		s.bus.Publish(event.PeerConnected(&p))
	}
	s.serve(peerID, conn)
}

// acceptHandshake implements the accepting side of spec.md's Handshake
// paragraph: the first frame must be Handshake; a version mismatch is
// a protocol error and the caller closes the connection.
func (s *Server) acceptHandshake(conn *Connection) (types.UserId, error) {
	msg, err := conn.Receive()
	if err != nil {
		return types.ZeroID, err
	}
	if msg.Kind != KindHandshake {
		return types.ZeroID, types.ProtocolError("expected handshake", nil)
	}
	if msg.Version != ProtocolVersion {
		return types.ZeroID, types.ProtocolError(fmt.Sprintf("unsupported protocol version %d", msg.Version), nil)
	}

	pubPEM, err := s.keypair.ExportPublicKeyPEM()
	if err != nil {
		return types.ZeroID, err
	}
	ack := NewHandshakeAck(s.profile.UserID, pubPEM)
	if err := conn.Send(ack); err != nil {
		return types.ZeroID, err
	}

	s.registry.SetPublicKey(msg.UserID, msg.PublicKey)
	return msg.UserID, nil
}

// Connect dials a peer's messaging port, performs the initiating side
// of the handshake, and registers the resulting connection.
func (s *Server) Connect(peerID types.UserId, addr types.NetworkAddress) error {
	raw, err := dial(addr)
	if err != nil {
		return err
	}
	conn := newConnection(raw)

	pubPEM, err := s.keypair.ExportPublicKeyPEM()
	if err != nil {
		conn.Close()
		return err
	}
	if err := conn.Send(NewHandshake(s.profile.UserID, pubPEM)); err != nil {
		conn.Close()
		return err
	}

	ack, err := conn.Receive()
	if err != nil {
		conn.Close()
		return err
	}
	if ack.Kind != KindHandshakeAck {
		conn.Close()
		return types.ProtocolError("expected handshake acknowledgment", nil)
	}

	s.registry.SetPublicKey(ack.UserID, ack.PublicKey)
	s.pool.Put(ack.UserID, conn)
	if p, ok := s.registry.Get(ack.UserID); ok {
		s.bus.Publish(event.PeerConnected(&p))
	}
	go s.serve(ack.UserID, conn)
	return nil
}

// serve is the per-connection read loop; any failure terminates the
// connection, evicts it from the pool, and emits PeerDisconnected, per
// spec.md's failure semantics for messaging.
func (s *Server) serve(peerID types.UserId, conn *Connection) {
	for {
		msg, err := conn.Receive()
		if err != nil {
			s.teardown(peerID, conn)
			return
		}
		if err := s.handle(peerID, conn, msg); err != nil {
			log.WithError(err).WithField("peer", peerID).Debug("message handling failed")
			s.teardown(peerID, conn)
			return
		}
	}
}

func (s *Server) teardown(peerID types.UserId, conn *Connection) {
	if s.pool.RemoveIf(peerID, conn) {
		conn.Close()
		s.bus.Publish(event.PeerDisconnected(peerID))
	}
}

// handle routes one decoded ProtocolMessage, implementing spec.md's
// Routing paragraph.
func (s *Server) handle(peerID types.UserId, conn *Connection, msg *ProtocolMessage) error {
	switch msg.Kind {
	case KindMessage:
		return s.handleApplicationMessage(conn, msg)

	case KindMessageAck, KindMessageDelivered:
		s.bus.Publish(event.MessageDeliveredEvent(msg.MessageID))

	case KindMessageRead:
		if msg.Receipt != nil {
			s.bus.Publish(event.MessageRead(msg.Receipt))
		}

	case KindTyping:
		if msg.Indicator != nil {
			s.bus.Publish(event.Typing(msg.Indicator))
		}

	case KindPing:
		return conn.Send(NewPong())

	case KindPong:
		// keep-alive acknowledged, nothing to do

	case KindHistoryRequest, KindHistoryResponse, KindError:
		// Application-level concerns outside the core's routing scope;
		// the external shell observes these via its own framing if needed.

	default:
		log.WithField("kind", msg.Kind).Debug("unhandled protocol message kind")
	}
	return nil
}

// handleApplicationMessage decrypts an envelope if present, overwrites
// Message.Content with the recovered plaintext, acks, and emits
// MessageReceived - in that order, per spec.md's "ack before event
// emission" rule.
func (s *Server) handleApplicationMessage(conn *Connection, msg *ProtocolMessage) error {
	if msg.Message == nil {
		return types.ProtocolError("message envelope missing payload", nil)
	}
	m := *msg.Message

	if msg.EncryptedKey != nil && msg.EncryptedData != nil {
		plaintext, err := cryptoengine.HybridDecrypt(s.keypair.Private, msg.EncryptedKey, msg.EncryptedData)
		if err != nil {
			s.bus.Publish(event.ErrorEvent(err.Error()))
			return err
		}
		m.Content = string(plaintext)
		m.Encrypted = true
	}

	if err := conn.Send(NewMessageAck(m.ID)); err != nil {
		return err
	}
	s.bus.Publish(event.MessageReceived(&m))
	return nil
}

// SendText encrypts and sends an application message to peerID,
// following spec.md's Encryption paragraph: a fresh session key, a
// fresh nonce, RSA-OAEP wrap under the peer's stored public key.
func (s *Server) SendText(peerID types.UserId, m types.Message) error {
	conn, ok := s.pool.Get(peerID)
	if !ok {
		return types.PeerNotFoundError(peerID.String())
	}

	p, ok := s.registry.Get(peerID)
	if !ok || p.PublicKey == nil {
		return types.CryptoError("no public key on file for peer", nil)
	}
	pub, err := cryptoengine.ImportPublicKeyPEM(p.PublicKey)
	if err != nil {
		return err
	}

	key, data, err := cryptoengine.HybridEncrypt(pub, []byte(m.Content))
	if err != nil {
		return err
	}

	if err := conn.Send(NewMessage(m, key, data)); err != nil {
		s.teardown(peerID, conn)
		return err
	}
	s.bus.Publish(event.MessageSent(&m))
	return nil
}

func isClosed(err error) bool {
	return err != nil && errIsClosedNetwork(err)
}

package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"lanchat/internal/event"
	"lanchat/internal/logging"
	"lanchat/internal/messaging"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

// Port is the fixed TCP port the transfer service listens on.
const Port = 37844

var log = logging.For("transfer")

// Service manages the lifecycle of every file transfer this node is a
// party to, generalizing original_source/crates/transfer/src/
// service.rs's TransferService to Go's listener/goroutine idiom and
// to spec.md's mandatory hash verification and file-name
// sanitization.
type Service struct {
	userID      types.UserId
	registry    *peer.Registry
	bus         *event.Bus
	downloadDir string

	mu        sync.Mutex
	transfers map[types.TransferId]*types.FileTransfer

	listener net.Listener
}

// NewService creates a transfer service that writes accepted files
// into downloadDir.
func NewService(userID types.UserId, registry *peer.Registry, bus *event.Bus, downloadDir string) *Service {
	return &Service{
		userID:      userID,
		registry:    registry,
		bus:         bus,
		downloadDir: downloadDir,
		transfers:   make(map[types.TransferId]*types.FileTransfer),
	}
}

// Start opens the listening socket and begins accepting transfer
// connections.
func (s *Service) Start() error {
	return s.startOn(fmt.Sprintf(":%d", Port))
}

func (s *Service) startOn(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return types.NetworkError("failed to start transfer listener", err)
	}
	s.listener = ln
	go s.acceptLoop()
	return nil
}

// ListenAddr returns the listener's bound address.
func (s *Service) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener.
func (s *Service) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Service) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Service) handleConnection(conn net.Conn) {
	defer conn.Close()

	payload, err := messaging.ReadFrame(conn)
	if err != nil {
		log.WithError(err).Debug("failed to read transfer frame")
		return
	}
	msg, err := DecodeMessage(payload)
	if err != nil {
		log.WithError(err).Debug("failed to decode transfer message")
		return
	}

	switch msg.Kind {
	case KindTransferRequest:
		s.handleTransferRequest(msg)

	case KindStartTransfer:
		s.receiveFile(conn, msg.TransferID)

	default:
		log.WithField("kind", msg.Kind).Debug("unexpected transfer message on fresh connection")
	}
}

func (s *Service) handleTransferRequest(msg *TransferMessage) {
	t := types.NewFileTransfer(msg.SenderID, s.userID, msg.FileName, msg.FileSize, msg.FileHash)
	t.TransferID = msg.TransferID

	s.mu.Lock()
	s.transfers[t.TransferID] = &t
	s.mu.Unlock()

	s.bus.Publish(event.FileTransferRequestedEvent(t.TransferID, msg.SenderID, msg.FileName, msg.FileSize))
}

// AcceptTransfer marks a pending inbound transfer Accepted.
func (s *Service) AcceptTransfer(transferID types.TransferId) error {
	s.mu.Lock()
	t, ok := s.transfers[transferID]
	if !ok {
		s.mu.Unlock()
		return types.FileTransferError("transfer not found", nil)
	}
	if !t.Status.CanTransitionTo(types.TransferAccepted) {
		s.mu.Unlock()
		return types.FileTransferError("transfer cannot be accepted from its current state", nil)
	}
	t.Status = types.TransferAccepted
	s.mu.Unlock()

	s.bus.Publish(event.FileTransferAcceptedEvent(transferID))
	return nil
}

// RejectTransfer marks a pending inbound transfer Cancelled with reason.
func (s *Service) RejectTransfer(transferID types.TransferId, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[transferID]
	if !ok {
		return types.FileTransferError("transfer not found", nil)
	}
	t.Status = types.TransferCancelled
	t.Error = &reason
	return nil
}

// SendFile computes the file's hash, records a Pending transfer,
// opens a connection to the recipient's transfer port, and sends
// TransferRequest. Acceptance is not sent back over the wire
// (FileTransferAccepted is published only on the recipient's own bus);
// streaming begins when StartSending is called.
func (s *Service) SendFile(recipientID types.UserId, filePath string) (types.TransferId, error) {
	fileName, err := SanitizeFileName(filepath.Base(filePath))
	if err != nil {
		return types.ZeroID, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return types.ZeroID, types.FileTransferError("failed to stat file", err)
	}

	hash, err := hashFile(filePath)
	if err != nil {
		return types.ZeroID, err
	}

	t := types.NewFileTransfer(s.userID, recipientID, fileName, uint64(info.Size()), hash)

	s.mu.Lock()
	s.transfers[t.TransferID] = &t
	s.mu.Unlock()

	p, ok := s.registry.Get(recipientID)
	if !ok {
		return types.ZeroID, types.PeerNotFoundError(recipientID.String())
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", p.Address.IP, Port))
	if err != nil {
		return types.ZeroID, types.NetworkError("failed to dial transfer port", err)
	}
	defer conn.Close()

	req := NewTransferRequest(t.TransferID, s.userID, fileName, t.FileSize, hash)
	if err := sendTransferMessage(conn, req); err != nil {
		return types.ZeroID, err
	}

	log.WithField("file", fileName).WithField("size", humanize.IBytes(t.FileSize)).Info("sent transfer request")
	return t.TransferID, nil
}

// StartSending opens the data connection and streams the file in
// fixed-size chunks once the recipient has accepted.
func (s *Service) StartSending(transferID types.TransferId, filePath string) error {
	s.mu.Lock()
	t, ok := s.transfers[transferID]
	s.mu.Unlock()
	if !ok {
		return types.FileTransferError("transfer not found", nil)
	}

	p, ok := s.registry.Get(t.RecipientID)
	if !ok {
		return types.PeerNotFoundError(t.RecipientID.String())
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", p.Address.IP, Port))
	if err != nil {
		return types.NetworkError("failed to dial transfer port", err)
	}
	defer conn.Close()

	if err := sendTransferMessage(conn, NewStartTransfer(transferID)); err != nil {
		return s.fail(transferID, err)
	}

	s.setStatus(transferID, types.TransferInProgress)

	file, err := os.Open(filePath)
	if err != nil {
		return s.fail(transferID, types.FileTransferError("failed to open file", err))
	}
	defer file.Close()

	buf := make([]byte, ChunkSize)
	var chunkIndex uint64
	for {
		n, err := file.Read(buf)
		if n > 0 {
			chunk := NewDataChunk(transferID, chunkIndex, append([]byte(nil), buf[:n]...))
			if sendErr := sendTransferMessage(conn, chunk); sendErr != nil {
				return s.fail(transferID, sendErr)
			}
			s.addProgress(transferID, uint64(n))
			chunkIndex++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.fail(transferID, types.FileTransferError("failed reading file", err))
		}
	}

	if err := sendTransferMessage(conn, NewTransferComplete(transferID)); err != nil {
		return s.fail(transferID, err)
	}
	s.setStatus(transferID, types.TransferCompleted)
	s.bus.Publish(event.FileTransferCompletedEvent(transferID))
	return nil
}

// receiveFile reads chunks off conn until TransferComplete or
// TransferFailed, writing each chunk to the download directory and
// verifying the file hash once complete - the spec's resolution of
// the advisory-hash Open Question: mismatch marks the transfer Failed.
func (s *Service) receiveFile(conn net.Conn, transferID types.TransferId) {
	s.mu.Lock()
	t, ok := s.transfers[transferID]
	s.mu.Unlock()
	if !ok {
		log.WithField("transfer", transferID).Debug("start-transfer for unknown transfer id")
		return
	}

	fileName, err := SanitizeFileName(t.FileName)
	if err != nil {
		s.fail(transferID, err)
		return
	}
	destPath := filepath.Join(s.downloadDir, fileName)

	out, err := os.Create(destPath)
	if err != nil {
		s.fail(transferID, types.FileTransferError("failed to create destination file", err))
		return
	}
	defer out.Close()

	s.setStatus(transferID, types.TransferInProgress)
	hasher := sha256.New()

	for {
		payload, err := messaging.ReadFrame(conn)
		if err != nil {
			s.fail(transferID, types.NetworkError("transfer connection read failed", err))
			return
		}
		msg, err := DecodeMessage(payload)
		if err != nil {
			s.fail(transferID, err)
			return
		}

		switch msg.Kind {
		case KindDataChunk:
			if _, err := out.Write(msg.Data); err != nil {
				s.fail(transferID, types.FileTransferError("failed writing chunk", err))
				return
			}
			hasher.Write(msg.Data)
			s.addProgress(transferID, uint64(len(msg.Data)))

		case KindTransferComplete:
			out.Sync()
			computed := hex.EncodeToString(hasher.Sum(nil))
			if computed != t.FileHash {
				s.fail(transferID, types.FileTransferError("file hash mismatch after transfer", nil))
				return
			}
			s.setStatus(transferID, types.TransferCompleted)
			s.bus.Publish(event.FileTransferCompletedEvent(transferID))
			return

		case KindTransferFailed:
			s.fail(transferID, types.FileTransferError(msg.Error, nil))
			return

		default:
			log.WithField("kind", msg.Kind).Debug("unexpected message during receive")
		}
	}
}

func (s *Service) setStatus(transferID types.TransferId, status types.TransferStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transfers[transferID]; ok {
		t.Status = status
	}
}

func (s *Service) addProgress(transferID types.TransferId, n uint64) {
	s.mu.Lock()
	t, ok := s.transfers[transferID]
	if !ok {
		s.mu.Unlock()
		return
	}
	t.BytesTransferred += n
	transferred, total := t.BytesTransferred, t.FileSize
	s.mu.Unlock()

	s.bus.Publish(event.FileTransferProgressEvent(transferID, transferred, total))
}

func (s *Service) fail(transferID types.TransferId, err error) error {
	msg := err.Error()
	s.mu.Lock()
	if t, ok := s.transfers[transferID]; ok {
		t.Status = types.TransferFailed
		t.Error = &msg
	}
	s.mu.Unlock()
	s.bus.Publish(event.FileTransferFailedEvent(transferID, msg))
	return err
}

func sendTransferMessage(conn net.Conn, msg TransferMessage) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	return messaging.WriteFrame(conn, data)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", types.FileTransferError("failed to open file for hashing", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", types.FileTransferError("failed to hash file", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

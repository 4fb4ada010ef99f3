// Package event defines the ChatEvent union that every long-running
// service (discovery, messaging, transfer) feeds into, and a small
// unbounded multi-producer single-consumer Bus that carries it to the
// one place that wants the whole stream: the node's own consumer loop,
// generalizing the teacher's single incomingMessages chan *Message in
// pkg/chat/chatservice.go to the full event surface the Rust ChatEvent
// enum names in original_source/crates/core/src/events.rs.
package event

import (
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

// Kind tags which field of Event is populated.
type Kind string

const (
	KindPeerDiscovered        Kind = "peer_discovered"
	KindPeerConnected         Kind = "peer_connected"
	KindPeerDisconnected      Kind = "peer_disconnected"
	KindPeerStatusChanged     Kind = "peer_status_changed"
	KindMessageReceived       Kind = "message_received"
	KindMessageSent           Kind = "message_sent"
	KindMessageDelivered      Kind = "message_delivered"
	KindMessageRead           Kind = "message_read"
	KindTypingIndicator       Kind = "typing_indicator"
	KindFileTransferRequested Kind = "file_transfer_requested"
	KindFileTransferAccepted  Kind = "file_transfer_accepted"
	KindFileTransferProgress  Kind = "file_transfer_progress"
	KindFileTransferCompleted Kind = "file_transfer_completed"
	KindFileTransferFailed    Kind = "file_transfer_failed"
	KindError                 Kind = "error"
	KindNetworkStatusChanged  Kind = "network_status_changed"
)

// PeerStatusChanged carries a peer's new status.
type PeerStatusChanged struct {
	UserID types.UserId
	Status types.UserStatus
}

// MessageDelivered carries the id of a message the recipient acked.
type MessageDelivered struct {
	MessageID types.UserId
}

// FileTransferRequested describes an inbound transfer offer.
type FileTransferRequested struct {
	TransferID types.TransferId
	From       types.UserId
	FileName   string
	FileSize   uint64
}

// FileTransferAccepted names the transfer the recipient accepted.
type FileTransferAccepted struct {
	TransferID types.TransferId
}

// FileTransferProgress reports chunk-level progress.
type FileTransferProgress struct {
	TransferID        types.TransferId
	BytesTransferred  uint64
	TotalBytes        uint64
}

// FileTransferCompleted names a transfer that finished. The receiver
// publishes it only after the file hash matched; the sender publishes
// it once TransferComplete has been sent.
type FileTransferCompleted struct {
	TransferID types.TransferId
}

// FileTransferFailed names a transfer that aborted, and why.
type FileTransferFailed struct {
	TransferID types.TransferId
	Error      string
}

// NetworkStatusChanged reports discovery socket health.
type NetworkStatusChanged struct {
	Connected bool
}

// Event is a tagged union mirroring the Rust ChatEvent enum: exactly one
// of the typed fields is populated, selected by Kind.
type Event struct {
	Kind Kind

	Peer                  *peer.Peer
	PeerID                types.UserId
	PeerStatusChanged     *PeerStatusChanged
	Message               *types.Message
	MessageDelivered      *MessageDelivered
	MessageRead           *types.ReadReceipt
	TypingIndicator       *types.TypingIndicator
	FileTransferRequested *FileTransferRequested
	FileTransferAccepted  *FileTransferAccepted
	FileTransferProgress  *FileTransferProgress
	FileTransferCompleted *FileTransferCompleted
	FileTransferFailed    *FileTransferFailed
	Error                 string
	NetworkStatusChanged  *NetworkStatusChanged
}

func PeerDiscovered(p *peer.Peer) Event { return Event{Kind: KindPeerDiscovered, Peer: p} }
func PeerConnected(p *peer.Peer) Event  { return Event{Kind: KindPeerConnected, Peer: p} }
func PeerDisconnected(id types.UserId) Event {
	return Event{Kind: KindPeerDisconnected, PeerID: id}
}
func PeerStatusChangedEvent(id types.UserId, status types.UserStatus) Event {
	return Event{Kind: KindPeerStatusChanged, PeerStatusChanged: &PeerStatusChanged{UserID: id, Status: status}}
}
func MessageReceived(m *types.Message) Event { return Event{Kind: KindMessageReceived, Message: m} }
func MessageSent(m *types.Message) Event     { return Event{Kind: KindMessageSent, Message: m} }
func MessageDeliveredEvent(id types.UserId) Event {
	return Event{Kind: KindMessageDelivered, MessageDelivered: &MessageDelivered{MessageID: id}}
}
func MessageRead(r *types.ReadReceipt) Event { return Event{Kind: KindMessageRead, MessageRead: r} }
func Typing(t *types.TypingIndicator) Event  { return Event{Kind: KindTypingIndicator, TypingIndicator: t} }

func FileTransferRequestedEvent(transferID types.TransferId, from types.UserId, fileName string, fileSize uint64) Event {
	return Event{
		Kind: KindFileTransferRequested,
		FileTransferRequested: &FileTransferRequested{
			TransferID: transferID,
			From:       from,
			FileName:   fileName,
			FileSize:   fileSize,
		},
	}
}

func FileTransferAcceptedEvent(transferID types.TransferId) Event {
	return Event{Kind: KindFileTransferAccepted, FileTransferAccepted: &FileTransferAccepted{TransferID: transferID}}
}

func FileTransferProgressEvent(transferID types.TransferId, transferred, total uint64) Event {
	return Event{
		Kind: KindFileTransferProgress,
		FileTransferProgress: &FileTransferProgress{
			TransferID:       transferID,
			BytesTransferred: transferred,
			TotalBytes:       total,
		},
	}
}

func FileTransferCompletedEvent(transferID types.TransferId) Event {
	return Event{Kind: KindFileTransferCompleted, FileTransferCompleted: &FileTransferCompleted{TransferID: transferID}}
}

func FileTransferFailedEvent(transferID types.TransferId, errMsg string) Event {
	return Event{
		Kind:                  KindFileTransferFailed,
		FileTransferFailed: &FileTransferFailed{TransferID: transferID, Error: errMsg},
	}
}

func ErrorEvent(msg string) Event { return Event{Kind: KindError, Error: msg} }

func NetworkStatusChangedEvent(connected bool) Event {
	return Event{Kind: KindNetworkStatusChanged, NetworkStatusChanged: &NetworkStatusChanged{Connected: connected}}
}

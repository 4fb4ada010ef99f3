package types

import "time"

// MessageType is the kind of payload a Message carries.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeAudio  MessageType = "audio"
	MessageTypeVideo  MessageType = "video"
	MessageTypeSystem MessageType = "system"
)

// MessageStatus forms a DAG: Sending -> Sent -> Delivered -> Read, with
// Failed reachable from Sending or Sent.
type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

// CanTransitionTo reports whether a MessageStatus transition is legal
// per spec.md's status DAG.
func (from MessageStatus) CanTransitionTo(to MessageStatus) bool {
	switch from {
	case StatusSending:
		return to == StatusSent || to == StatusFailed
	case StatusSent:
		return to == StatusDelivered || to == StatusFailed
	case StatusDelivered:
		return to == StatusRead
	default:
		return false
	}
}

// MessageMetadataKind tags which variant of MessageMetadata is populated.
type MessageMetadataKind string

const (
	MetaFile  MessageMetadataKind = "file"
	MetaImage MessageMetadataKind = "image"
	MetaAudio MessageMetadataKind = "audio"
	MetaVideo MessageMetadataKind = "video"
)

// MessageMetadata is a tagged union mirroring the original Rust
// MessageMetadata enum (File/Image/Audio/Video variants); only the
// field(s) matching Kind are meaningful.
type MessageMetadata struct {
	Kind MessageMetadataKind `json:"kind"`

	// MetaFile
	FileName string `json:"file_name,omitempty"`
	FileSize uint64 `json:"file_size,omitempty"`
	FileHash string `json:"file_hash,omitempty"`

	// MetaImage / MetaVideo
	Width     uint32  `json:"width,omitempty"`
	Height    uint32  `json:"height,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`

	// MetaAudio / MetaVideo
	DurationSeconds uint32 `json:"duration,omitempty"`
}

// Message is a chat message flowing between peers over the messaging
// transport. Id is immutable once created.
type Message struct {
	ID          uuid128    `json:"id"`
	SessionID   SessionId  `json:"session_id"`
	SenderID    UserId     `json:"sender_id"`
	RecipientID UserId     `json:"recipient_id"`
	Type        MessageType `json:"message_type"`
	Content     string      `json:"content"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Status      MessageStatus `json:"status"`
	Encrypted   bool        `json:"encrypted"`
}

// uuid128 avoids importing the uuid package twice under two names in
// this file; it is exactly types.UserId's underlying type.
type uuid128 = UserId

// NewTextMessage creates a plaintext chat message in the Sending state.
func NewTextMessage(sessionID SessionId, senderID, recipientID UserId, content string) Message {
	return Message{
		ID:          NewID(),
		SessionID:   sessionID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Type:        MessageTypeText,
		Content:     content,
		Timestamp:   time.Now().UTC(),
		Status:      StatusSending,
	}
}

// NewFileMessage creates a message describing an associated file transfer.
func NewFileMessage(sessionID SessionId, senderID, recipientID UserId, fileName string, fileSize uint64, fileHash string) Message {
	return Message{
		ID:          NewID(),
		SessionID:   sessionID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Type:        MessageTypeFile,
		Content:     fileName,
		Metadata: &MessageMetadata{
			Kind:     MetaFile,
			FileName: fileName,
			FileSize: fileSize,
			FileHash: fileHash,
		},
		Timestamp: time.Now().UTC(),
		Status:    StatusSending,
	}
}

// TypingIndicator reports whether a user is actively typing in a session.
type TypingIndicator struct {
	UserID    UserId    `json:"user_id"`
	SessionID SessionId `json:"session_id"`
	IsTyping  bool      `json:"is_typing"`
}

// ReadReceipt records that a user saw a particular message.
type ReadReceipt struct {
	MessageID uuid128   `json:"message_id"`
	UserID    UserId    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

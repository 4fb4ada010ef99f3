package messaging

import (
	"encoding/json"
	"time"

	"lanchat/internal/cryptoengine"
	"lanchat/internal/types"
)

// ProtocolVersion is the only handshake version this implementation
// speaks; a mismatch is a protocol error.
const ProtocolVersion = 1

// Kind tags which field of ProtocolMessage is populated, the Go
// equivalent of the Rust ProtocolMessage enum in
// original_source/crates/protocol/src/messages.rs.
type Kind string

const (
	KindHandshake        Kind = "handshake"
	KindHandshakeAck     Kind = "handshake_ack"
	KindMessage          Kind = "message"
	KindMessageAck       Kind = "message_ack"
	KindMessageDelivered Kind = "message_delivered"
	KindMessageRead      Kind = "message_read"
	KindTyping           Kind = "typing"
	KindHistoryRequest   Kind = "history_request"
	KindHistoryResponse  Kind = "history_response"
	KindPing             Kind = "ping"
	KindPong             Kind = "pong"
	KindError            Kind = "error"
)

// ProtocolMessage is the self-describing tagged union framed over the
// messaging transport.
type ProtocolMessage struct {
	Kind Kind `json:"kind"`

	// Handshake / HandshakeAck
	Version   uint32       `json:"version,omitempty"`
	UserID    types.UserId `json:"user_id,omitempty"`
	PublicKey []byte       `json:"public_key,omitempty"`

	// Message
	Message       *types.Message                    `json:"message,omitempty"`
	EncryptedKey  *cryptoengine.EncryptedSessionKey `json:"encrypted_key,omitempty"`
	EncryptedData *cryptoengine.EncryptedData       `json:"encrypted_data,omitempty"`

	// MessageAck / MessageDelivered
	MessageID types.UserId `json:"message_id,omitempty"`

	// MessageRead
	Receipt *types.ReadReceipt `json:"receipt,omitempty"`

	// Typing
	Indicator *types.TypingIndicator `json:"indicator,omitempty"`

	// HistoryRequest
	SessionID types.SessionId `json:"session_id,omitempty"`
	Before    *time.Time      `json:"before,omitempty"`
	Limit     int             `json:"limit,omitempty"`

	// HistoryResponse
	Messages []types.Message `json:"messages,omitempty"`

	// Error
	Code    uint32 `json:"code,omitempty"`
	ErrText string `json:"error_message,omitempty"`
}

func NewHandshake(userID types.UserId, publicKey []byte) ProtocolMessage {
	return ProtocolMessage{Kind: KindHandshake, Version: ProtocolVersion, UserID: userID, PublicKey: publicKey}
}

func NewHandshakeAck(userID types.UserId, publicKey []byte) ProtocolMessage {
	return ProtocolMessage{Kind: KindHandshakeAck, UserID: userID, PublicKey: publicKey}
}

func NewMessage(msg types.Message, key *cryptoengine.EncryptedSessionKey, data *cryptoengine.EncryptedData) ProtocolMessage {
	return ProtocolMessage{Kind: KindMessage, Message: &msg, EncryptedKey: key, EncryptedData: data}
}

func NewMessageAck(messageID types.UserId) ProtocolMessage {
	return ProtocolMessage{Kind: KindMessageAck, MessageID: messageID}
}

func NewMessageDelivered(messageID types.UserId) ProtocolMessage {
	return ProtocolMessage{Kind: KindMessageDelivered, MessageID: messageID}
}

func NewMessageRead(receipt types.ReadReceipt) ProtocolMessage {
	return ProtocolMessage{Kind: KindMessageRead, Receipt: &receipt}
}

func NewTyping(indicator types.TypingIndicator) ProtocolMessage {
	return ProtocolMessage{Kind: KindTyping, Indicator: &indicator}
}

func NewHistoryRequest(sessionID types.SessionId, before *time.Time, limit int) ProtocolMessage {
	return ProtocolMessage{Kind: KindHistoryRequest, SessionID: sessionID, Before: before, Limit: limit}
}

func NewHistoryResponse(sessionID types.SessionId, messages []types.Message) ProtocolMessage {
	return ProtocolMessage{Kind: KindHistoryResponse, SessionID: sessionID, Messages: messages}
}

func NewPing() ProtocolMessage { return ProtocolMessage{Kind: KindPing} }
func NewPong() ProtocolMessage { return ProtocolMessage{Kind: KindPong} }

func NewError(code uint32, message string) ProtocolMessage {
	return ProtocolMessage{Kind: KindError, Code: code, ErrText: message}
}

// Encode serializes the message for transmission.
func (m *ProtocolMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, types.ProtocolError("failed to encode protocol message", err)
	}
	return data, nil
}

// DecodeMessage parses a ProtocolMessage from a frame payload.
func DecodeMessage(data []byte) (*ProtocolMessage, error) {
	var m ProtocolMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.ProtocolError("failed to decode protocol message", err)
	}
	return &m, nil
}

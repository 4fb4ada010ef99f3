// Package discovery implements the UDP multicast presence protocol:
// announce/request/response/heartbeat/goodbye over a fixed well-known
// group, feeding a shared peer.Registry and publishing join/leave
// events, generalizing the teacher's pkg/discovery package (message.go,
// multicast.go, registry.go, services.go) from its peer-ID/username
// wire shape to the richer UserProfile/NetworkAddress/public-key
// payloads this system needs.
package discovery

import (
	"encoding/json"

	"lanchat/internal/types"
)

// MessageKind tags which Message variant is populated, the Go
// equivalent of the Rust DiscoveryMessage enum.
type MessageKind string

const (
	KindAnnounce  MessageKind = "announce"
	KindRequest   MessageKind = "discovery_request"
	KindResponse  MessageKind = "discovery_response"
	KindGoodbye   MessageKind = "goodbye"
	KindHeartbeat MessageKind = "heartbeat"
)

// Message is the self-describing tagged union sent as one UDP
// datagram per message over the multicast group.
type Message struct {
	Kind MessageKind `json:"kind"`

	// Announce / DiscoveryResponse
	Profile   *types.UserProfile   `json:"profile,omitempty"`
	Address   *types.NetworkAddress `json:"address,omitempty"`
	PublicKey []byte               `json:"public_key,omitempty"`

	// Goodbye / Heartbeat
	UserID types.UserId     `json:"user_id,omitempty"`
	Status types.UserStatus `json:"status,omitempty"`
}

// NewAnnounce builds an Announce message advertising the local peer.
func NewAnnounce(profile types.UserProfile, addr types.NetworkAddress, publicKey []byte) Message {
	return Message{Kind: KindAnnounce, Profile: &profile, Address: &addr, PublicKey: publicKey}
}

// NewDiscoveryRequest solicits responses from listeners already online.
func NewDiscoveryRequest() Message {
	return Message{Kind: KindRequest}
}

// NewDiscoveryResponse replies to a DiscoveryRequest with local identity.
func NewDiscoveryResponse(profile types.UserProfile, addr types.NetworkAddress, publicKey []byte) Message {
	return Message{Kind: KindResponse, Profile: &profile, Address: &addr, PublicKey: publicKey}
}

// NewGoodbye announces a graceful departure.
func NewGoodbye(userID types.UserId) Message {
	return Message{Kind: KindGoodbye, UserID: userID}
}

// NewHeartbeat reports ongoing liveness and status.
func NewHeartbeat(userID types.UserId, status types.UserStatus) Message {
	return Message{Kind: KindHeartbeat, UserID: userID, Status: status}
}

// Encode serializes the message for network transmission.
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, types.InvalidDataError("failed to encode discovery message", err)
	}
	return data, nil
}

// Decode parses a message from a received datagram.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.InvalidDataError("failed to decode discovery message", err)
	}
	return &m, nil
}

// SenderUserID returns the UserId this message pertains to, regardless
// of which variant carries it, for the "drop our own messages" check.
func (m *Message) SenderUserID() types.UserId {
	switch m.Kind {
	case KindAnnounce, KindResponse:
		if m.Profile != nil {
			return m.Profile.UserID
		}
		return types.ZeroID
	default:
		return m.UserID
	}
}

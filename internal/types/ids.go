package types

import "github.com/google/uuid"

// UserId, SessionId, and TransferId are opaque 128-bit identifiers,
// globally unique, generated at creation time; equality is byte-identity
// (uuid.UUID is a [16]byte array, so == already does the right thing).
type UserId = uuid.UUID
type SessionId = uuid.UUID
type TransferId = uuid.UUID

// NewID generates a fresh random (v4) identifier.
func NewID() uuid.UUID {
	return uuid.New()
}

// ZeroID is the nil/empty identifier.
var ZeroID = uuid.Nil

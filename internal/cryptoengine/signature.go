package cryptoengine

import (
	"crypto/ed25519"
	"crypto/rand"

	"lanchat/internal/types"
)

// Signature is a detached Ed25519 signature over a message.
type Signature struct {
	Bytes []byte `json:"signature"`
}

// MessageSigner holds an Ed25519 key pair. Nothing in the messaging
// handshake calls this yet - per the design notes it's a primitive the
// node can adopt later for sender authentication without touching the
// wire format, the same gap the Rust signature.rs leaves between
// MessageSigner and protocol/src/connection.rs.
type MessageSigner struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// GenerateSigner creates a fresh Ed25519 signing key pair.
func GenerateSigner() (*MessageSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, types.CryptoError("key generation failed", err)
	}
	return &MessageSigner{public: pub, private: priv}, nil
}

// Sign produces a detached signature over message.
func (s *MessageSigner) Sign(message []byte) Signature {
	return Signature{Bytes: ed25519.Sign(s.private, message)}
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (s *MessageSigner) PublicKey() []byte {
	out := make([]byte, len(s.public))
	copy(out, s.public)
	return out
}

// VerifySignature checks sig against message under publicKey.
func VerifySignature(publicKey, message []byte, sig Signature) error {
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, sig.Bytes) {
		return types.CryptoError("signature verification failed", nil)
	}
	return nil
}

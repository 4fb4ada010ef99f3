package cryptoengine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"io"

	"lanchat/internal/types"
)

// AESKeySize is the AES-256 key size in bytes.
const AESKeySize = 32

// NonceSize is the GCM nonce size in bytes (96 bits).
const NonceSize = 12

// EncryptedData is ciphertext paired with the nonce used to produce it,
// with the same fields as the Rust EncryptedData struct; encoding/json
// encodes both []byte fields as base64 strings.
type EncryptedData struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

// EncryptedSessionKey is an AES session key wrapped under RSA-OAEP.
type EncryptedSessionKey struct {
	EncryptedKey []byte `json:"encrypted_key"`
}

// AESEngine encrypts and decrypts with a single AES-256-GCM key.
type AESEngine struct {
	key [AESKeySize]byte
}

// NewAESEngine creates an engine around a freshly generated random key.
func NewAESEngine() (*AESEngine, error) {
	var key [AESKeySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, types.CryptoError("key generation failed", err)
	}
	return &AESEngine{key: key}, nil
}

// AESEngineFromKey wraps an existing 32-byte session key.
func AESEngineFromKey(key [AESKeySize]byte) *AESEngine {
	return &AESEngine{key: key}
}

// Key returns the underlying session key.
func (e *AESEngine) Key() [AESKeySize]byte {
	return e.key
}

func (e *AESEngine) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key[:])
	if err != nil {
		return nil, types.CryptoError("encryption failed", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, types.CryptoError("encryption failed", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *AESEngine) Encrypt(plaintext []byte) (*EncryptedData, error) {
	gcm, err := e.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, types.CryptoError("encryption failed", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return &EncryptedData{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// Decrypt opens ciphertext sealed by Encrypt.
func (e *AESEngine) Decrypt(data *EncryptedData) ([]byte, error) {
	if len(data.Nonce) != NonceSize {
		return nil, types.CryptoError("decryption failed", nil)
	}
	gcm, err := e.gcm()
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, data.Nonce, data.Ciphertext, nil)
	if err != nil {
		return nil, types.CryptoError("decryption failed", err)
	}
	return plaintext, nil
}

// EncryptSessionKey wraps a 32-byte AES key under RSA-OAEP-SHA256.
func EncryptSessionKey(pub *rsa.PublicKey, sessionKey [AESKeySize]byte) (*EncryptedSessionKey, error) {
	encrypted, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, sessionKey[:], nil)
	if err != nil {
		return nil, types.CryptoError("encryption failed", err)
	}
	return &EncryptedSessionKey{EncryptedKey: encrypted}, nil
}

// DecryptSessionKey unwraps a session key with the matching private key.
func DecryptSessionKey(priv *rsa.PrivateKey, wrapped *EncryptedSessionKey) ([AESKeySize]byte, error) {
	var key [AESKeySize]byte
	decrypted, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrapped.EncryptedKey, nil)
	if err != nil {
		return key, types.CryptoError("decryption failed", err)
	}
	if len(decrypted) != AESKeySize {
		return key, types.CryptoError("invalid key size after decryption", nil)
	}
	copy(key[:], decrypted)
	return key, nil
}

// HybridEncrypt encrypts plaintext for a recipient: a fresh AES-256
// session key encrypts the payload, RSA-OAEP wraps the session key for
// the recipient's public key.
func HybridEncrypt(recipientPub *rsa.PublicKey, plaintext []byte) (*EncryptedSessionKey, *EncryptedData, error) {
	aesEngine, err := NewAESEngine()
	if err != nil {
		return nil, nil, err
	}
	data, err := aesEngine.Encrypt(plaintext)
	if err != nil {
		return nil, nil, err
	}
	key := aesEngine.Key()
	wrapped, err := EncryptSessionKey(recipientPub, key)
	if err != nil {
		return nil, nil, err
	}
	return wrapped, data, nil
}

// HybridDecrypt reverses HybridEncrypt using the recipient's private key.
func HybridDecrypt(priv *rsa.PrivateKey, wrapped *EncryptedSessionKey, data *EncryptedData) ([]byte, error) {
	sessionKey, err := DecryptSessionKey(priv, wrapped)
	if err != nil {
		return nil, err
	}
	return AESEngineFromKey(sessionKey).Decrypt(data)
}

// Package cryptoengine implements the hybrid RSA/AES-GCM encryption
// scheme described in original_source/crates/crypto: RSA-2048 wraps a
// fresh AES-256 session key per message, AES-256-GCM carries the
// payload. Every primitive here is backed by the standard library
// (crypto/rsa, crypto/aes, crypto/cipher, crypto/ed25519, crypto/sha256)
// rather than a third-party crate, since Go's stdlib already implements
// OAEP, GCM, and Ed25519 to the same specifications the Rust crates
// (rsa, aes-gcm, ring) wrap - see DESIGN.md for the full justification.
package cryptoengine

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"lanchat/internal/types"
)

// KeySize is the RSA modulus size in bits.
const KeySize = 2048

// KeyPair holds an RSA private key and its derived public key, the Go
// equivalent of the Rust KeyPair wrapping RsaPrivateKey/RsaPublicKey.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// Generate creates a fresh 2048-bit RSA key pair.
func Generate() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, types.CryptoError("key generation failed", err)
	}
	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

// ExportPublicKeyPEM serializes the public key as a PEM-encoded
// SubjectPublicKeyInfo block, the Go analogue of the Rust
// to_public_key_pem (PKCS8 SPKI, LF line endings).
func (kp *KeyPair) ExportPublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return nil, types.CryptoError("invalid key", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return pem.EncodeToMemory(block), nil
}

// ExportPrivateKeyPEM serializes the private key as a PKCS8 PEM block.
func (kp *KeyPair) ExportPrivateKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(kp.Private)
	if err != nil {
		return nil, types.CryptoError("invalid key", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	return pem.EncodeToMemory(block), nil
}

// ImportPublicKeyPEM parses a PEM-encoded SubjectPublicKeyInfo block
// produced by ExportPublicKeyPEM.
func ImportPublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, types.CryptoError("invalid key", nil)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, types.CryptoError("invalid key", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, types.CryptoError("invalid key", nil)
	}
	return rsaPub, nil
}

// ImportPrivateKeyPEM parses a PKCS8 PEM block produced by
// ExportPrivateKeyPEM.
func ImportPrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, types.CryptoError("invalid key", nil)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, types.CryptoError("invalid key", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, types.CryptoError("invalid key", nil)
	}
	return rsaKey, nil
}

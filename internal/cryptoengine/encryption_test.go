package cryptoengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAESRoundTrip(t *testing.T) {
	engine, err := NewAESEngine()
	require.NoError(t, err)

	plaintext := []byte("Hello, World!")
	encrypted, err := engine.Encrypt(plaintext)
	require.NoError(t, err)
	require.Len(t, encrypted.Nonce, NonceSize)

	decrypted, err := engine.Decrypt(encrypted)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestAESEncryptUsesFreshNonceEachCall(t *testing.T) {
	engine, err := NewAESEngine()
	require.NoError(t, err)

	a, err := engine.Encrypt([]byte("same message"))
	require.NoError(t, err)
	b, err := engine.Encrypt([]byte("same message"))
	require.NoError(t, err)

	require.NotEqual(t, a.Nonce, b.Nonce)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestAESDecryptRejectsTamperedCiphertext(t *testing.T) {
	engine, err := NewAESEngine()
	require.NoError(t, err)

	encrypted, err := engine.Encrypt([]byte("secret"))
	require.NoError(t, err)
	encrypted.Ciphertext[0] ^= 0xFF

	_, err = engine.Decrypt(encrypted)
	require.Error(t, err)
}

func TestHybridEncryptionRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	plaintext := []byte("Secret message")
	wrapped, data, err := HybridEncrypt(kp.Public, plaintext)
	require.NoError(t, err)

	decrypted, err := HybridDecrypt(kp.Private, wrapped, data)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestHybridDecryptFailsWithWrongPrivateKey(t *testing.T) {
	kp1, err := Generate()
	require.NoError(t, err)
	kp2, err := Generate()
	require.NoError(t, err)

	wrapped, data, err := HybridEncrypt(kp1.Public, []byte("for kp1 only"))
	require.NoError(t, err)

	_, err = HybridDecrypt(kp2.Private, wrapped, data)
	require.Error(t, err)
}

func TestKeyPairPEMRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	pubPEM, err := kp.ExportPublicKeyPEM()
	require.NoError(t, err)
	importedPub, err := ImportPublicKeyPEM(pubPEM)
	require.NoError(t, err)
	require.Equal(t, kp.Public.N, importedPub.N)

	privPEM, err := kp.ExportPrivateKeyPEM()
	require.NoError(t, err)
	importedPriv, err := ImportPrivateKeyPEM(privPEM)
	require.NoError(t, err)
	require.Equal(t, kp.Private.D, importedPriv.D)
}

func TestSignAndVerify(t *testing.T) {
	signer, err := GenerateSigner()
	require.NoError(t, err)

	message := []byte("chat payload")
	sig := signer.Sign(message)

	require.NoError(t, VerifySignature(signer.PublicKey(), message, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	signer, err := GenerateSigner()
	require.NoError(t, err)

	sig := signer.Sign([]byte("original"))
	err = VerifySignature(signer.PublicKey(), []byte("tampered"), sig)
	require.Error(t, err)
}

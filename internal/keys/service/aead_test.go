package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		cipher, err := NewAESGCM(testKey(t))
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewAESGCM(make([]byte, 16))
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestNewChaCha20Poly1305(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		cipher, err := NewChaCha20Poly1305(testKey(t))
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewChaCha20Poly1305(make([]byte, 16))
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestAEADRoundTrip(t *testing.T) {
	manager := NewAEADManager()

	for _, alg := range []keysDomain.Algorithm{keysDomain.AESGCM, keysDomain.ChaCha20} {
		t.Run(alg.String(), func(t *testing.T) {
			key := testKey(t)
			cipher, err := manager.CreateCipher(key, alg)
			require.NoError(t, err)

			plaintext := []byte("master secret material")
			aad := []byte("context")

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, nonce, 12)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestAEADFailsClosed(t *testing.T) {
	manager := NewAEADManager()

	t.Run("tampered ciphertext", func(t *testing.T) {
		cipher, err := manager.CreateCipher(testKey(t), keysDomain.AESGCM)
		require.NoError(t, err)

		ciphertext, nonce, err := cipher.Encrypt([]byte("data"), nil)
		require.NoError(t, err)

		ciphertext[0] ^= 0xff
		plaintext, err := cipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, plaintext)
	})

	t.Run("wrong key", func(t *testing.T) {
		cipher1, err := manager.CreateCipher(testKey(t), keysDomain.AESGCM)
		require.NoError(t, err)
		cipher2, err := manager.CreateCipher(testKey(t), keysDomain.AESGCM)
		require.NoError(t, err)

		ciphertext, nonce, err := cipher1.Encrypt([]byte("data"), nil)
		require.NoError(t, err)

		plaintext, err := cipher2.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, plaintext)
	})

	t.Run("wrong AAD", func(t *testing.T) {
		cipher, err := manager.CreateCipher(testKey(t), keysDomain.ChaCha20)
		require.NoError(t, err)

		ciphertext, nonce, err := cipher.Encrypt([]byte("data"), []byte("aad-1"))
		require.NoError(t, err)

		plaintext, err := cipher.Decrypt(ciphertext, nonce, []byte("aad-2"))
		assert.Error(t, err)
		assert.Nil(t, plaintext)
	})
}

func TestAEADManager_CreateCipher(t *testing.T) {
	manager := NewAEADManager()

	t.Run("invalid key size", func(t *testing.T) {
		_, err := manager.CreateCipher(make([]byte, 16), keysDomain.AESGCM)
		assert.ErrorIs(t, err, keysDomain.ErrInvalidKeySize)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(testKey(t), keysDomain.Algorithm("des"))
		assert.ErrorIs(t, err, keysDomain.ErrUnsupportedAlgorithm)
	})
}

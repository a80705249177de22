package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyEncryptionKey(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x01}, KeySize)
		kek, err := NewKeyEncryptionKey(BackendHSM, key)
		require.NoError(t, err)
		assert.Equal(t, BackendHSM, kek.Backend())
		assert.Equal(t, key, kek.Bytes())
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := NewKeyEncryptionKey(BackendSoftware, make([]byte, 31))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})

	t.Run("copies caller buffer", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x02}, KeySize)
		kek, err := NewKeyEncryptionKey(BackendSoftware, key)
		require.NoError(t, err)

		Zero(key)
		assert.NotEqual(t, key, kek.Bytes())
	})
}

func TestKeyEncryptionKey_Destroy(t *testing.T) {
	kek, err := NewKeyEncryptionKey(BackendSoftware, bytes.Repeat([]byte{0x03}, KeySize))
	require.NoError(t, err)

	kek.Destroy()
	assert.Equal(t, make([]byte, KeySize), kek.Bytes())
}

func TestAlgorithm_Validate(t *testing.T) {
	assert.NoError(t, AESGCM.Validate())
	assert.NoError(t, ChaCha20.Validate())
	assert.Error(t, Algorithm("des").Validate())
}

func TestBackend_Validate(t *testing.T) {
	assert.NoError(t, BackendHSM.Validate())
	assert.NoError(t, BackendPlatform.Validate())
	assert.NoError(t, BackendSoftware.Validate())
	assert.Error(t, Backend("tpm2").Validate())
}

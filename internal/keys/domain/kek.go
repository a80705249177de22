package domain

import (
	"fmt"
)

// KeyEncryptionKey is the symmetric key used solely to encrypt and decrypt
// the master secret at rest. It is derived or unwrapped once at startup and
// never persisted in plaintext.
type KeyEncryptionKey struct {
	backend Backend
	key     []byte
}

// NewKeyEncryptionKey wraps raw KEK material obtained from a backend.
// The material must be exactly KeySize bytes; the slice is copied.
func NewKeyEncryptionKey(backend Backend, key []byte) (*KeyEncryptionKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: KEK must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &KeyEncryptionKey{backend: backend, key: k}, nil
}

// Backend returns the backend that produced this KEK.
func (k *KeyEncryptionKey) Backend() Backend {
	return k.backend
}

// Bytes returns a copy of the raw key material for cipher construction.
// Callers must zero the returned slice after use.
func (k *KeyEncryptionKey) Bytes() []byte {
	b := make([]byte, len(k.key))
	copy(b, k.key)
	return b
}

// Destroy zeroes the key material in memory.
func (k *KeyEncryptionKey) Destroy() {
	Zero(k.key)
}

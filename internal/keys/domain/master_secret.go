package domain

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// MasterSecret holds the single long-lived random value mixed into token
// derivation. The raw bytes live only in volatile memory after decryption;
// an encrypted copy persists on disk. The value is never exposed outside the
// key-management boundary except to the token generator.
type MasterSecret struct {
	key       []byte
	createdAt time.Time
}

// NewMasterSecret wraps raw key material in a MasterSecret.
// The material must be exactly KeySize bytes; the slice is copied so the
// caller can zero its own buffer immediately.
func NewMasterSecret(key []byte, createdAt time.Time) (*MasterSecret, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master secret must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterSecret{key: k, createdAt: createdAt}, nil
}

// Hex returns the hex encoding of the secret, used as a derivation input.
// Callers must never log or persist the returned string.
func (m *MasterSecret) Hex() string {
	return hex.EncodeToString(m.key)
}

// Bytes returns a copy of the raw secret bytes.
func (m *MasterSecret) Bytes() []byte {
	b := make([]byte, len(m.key))
	copy(b, m.key)
	return b
}

// CreatedAt returns when this secret was generated.
func (m *MasterSecret) CreatedAt() time.Time {
	return m.createdAt
}

// Destroy zeroes the secret material in memory.
func (m *MasterSecret) Destroy() {
	Zero(m.key)
}

// SecretHandle is the process-wide guarded reference to the active master
// secret. Token generation reads through it; rotation swaps it atomically so
// concurrent readers observe either the pre- or post-rotation secret, never a
// torn value. Exactly one active secret exists at any time.
type SecretHandle struct {
	mu      sync.RWMutex
	current *MasterSecret
}

// NewSecretHandle creates a handle holding the given secret.
func NewSecretHandle(secret *MasterSecret) *SecretHandle {
	return &SecretHandle{current: secret}
}

// Current returns the active master secret.
// Returns ErrSecretNotLoaded if the handle was closed or never initialized.
func (h *SecretHandle) Current() (*MasterSecret, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil, ErrSecretNotLoaded
	}
	return h.current, nil
}

// Swap replaces the active secret and returns the previous one.
// The previous secret is not destroyed here: in-flight derivations may still
// hold a reference. Callers must destroy it once no readers remain.
func (h *SecretHandle) Swap(next *MasterSecret) *MasterSecret {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.current
	h.current = next
	return prev
}

// Close destroys the active secret and clears the handle.
func (h *SecretHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil {
		h.current.Destroy()
		h.current = nil
	}
}

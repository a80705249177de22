// Package domain defines the key-management domain models for the tokenization core.
//
// The hierarchy is two-tier: a Key-Encryption-Key (KEK) obtained from a
// configured backend protects the single long-lived master secret at rest.
// The master secret is combined with per-token salts to derive student tokens;
// neither key ever leaves this boundary in plaintext.
package domain

import (
	"errors"
)

// Algorithm represents the AEAD algorithm used to encrypt the master secret at rest.
//
// Both supported algorithms provide authenticated encryption: decryption
// rejects ciphertexts whose authentication tag does not verify, so a wrong
// KEK or a tampered file fails closed instead of yielding garbage bytes.
type Algorithm string

const (
	// AESGCM is AES-256-GCM: 256-bit key, 12-byte nonce, 16-byte tag.
	// Preferred on CPUs with AES-NI acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305: 256-bit key, 12-byte nonce, 16-byte tag.
	// Constant-time in software, preferred without AES hardware support.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Validate checks if the algorithm is supported.
func (a Algorithm) Validate() error {
	switch a {
	case AESGCM, ChaCha20:
		return nil
	default:
		return errors.New("invalid algorithm")
	}
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// Backend identifies the source of Key-Encryption-Key material.
type Backend string

const (
	// BackendHSM wraps the KEK with a hardware security module or cloud KMS.
	// The KEK is persisted only in wrapped form; unwrapping requires the
	// configured hardware endpoint.
	BackendHSM Backend = "hsm"

	// BackendPlatform uses OS-level protected key storage.
	BackendPlatform Backend = "platform"

	// BackendSoftware derives the KEK from machine identity. Development use
	// only; the provider logs a startup warning whenever this path is active.
	BackendSoftware Backend = "software"
)

// Validate checks if the backend is supported.
func (b Backend) Validate() error {
	switch b {
	case BackendHSM, BackendPlatform, BackendSoftware:
		return nil
	default:
		return errors.New("invalid key backend")
	}
}

// String returns the string representation of the backend.
func (b Backend) String() string {
	return string(b)
}

// KeySize is the required size in bytes of the KEK and the master secret.
const KeySize = 32

// Package service implements the secure-key hierarchy: KEK acquisition from a
// configured backend and the encrypted-at-rest master secret store.
package service

import (
	"context"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg keysDomain.Algorithm) (AEAD, error)
}

// KekProvider obtains the Key-Encryption-Key from the configured backend.
// Initialize is called once at process start; no other component ever sees
// raw KEK material.
type KekProvider interface {
	Initialize(ctx context.Context) (*keysDomain.KeyEncryptionKey, error)
}

// SecretStore manages the encrypted master secret at rest.
type SecretStore interface {
	// LoadOrCreate decrypts the persisted master secret with the current KEK,
	// or generates, encrypts and persists a fresh one if none exists.
	// Decryption failure fails closed with ErrSecretCorrupted.
	LoadOrCreate(ctx context.Context) (*keysDomain.MasterSecret, error)

	// Rotate archives the current encrypted secret, generates a fresh one and
	// atomically replaces the active file. Invalidates verifiability of all
	// previously issued tokens going forward.
	Rotate(ctx context.Context, authorizedBy, reason string) (*keysDomain.MasterSecret, error)
}

package domain

import (
	"github.com/studentsync/tokenizer/internal/errors"
)

// Key-management error definitions.
//
// Errors in this package never carry key bytes, salts, or ciphertext in
// their messages. Configuration-level failures wrap ErrConfiguration so the
// process aborts startup instead of running with reduced security.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates an AEAD open failed: wrong KEK, tampered
	// ciphertext, or a corrupted file. The specific cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrSecretCorrupted indicates the persisted master secret could not be
	// decrypted with the current KEK. The tokenization subsystem must not
	// start in this state.
	ErrSecretCorrupted = errors.Wrap(errors.ErrConfiguration, "master secret file corrupted or undecryptable")

	// ErrSecretNotLoaded indicates key material was requested before
	// initialization or after shutdown.
	ErrSecretNotLoaded = errors.Wrap(errors.ErrConfiguration, "master secret not loaded")

	// ErrBackendUnavailable indicates the configured key backend could not be
	// reached and no fallback is permitted.
	ErrBackendUnavailable = errors.Wrap(errors.ErrConfiguration, "key backend unavailable")

	// ErrFallbackDisabled indicates a backend failed and automatic fallback
	// was not explicitly enabled by the operator.
	ErrFallbackDisabled = errors.Wrap(errors.ErrConfiguration, "key backend failed and fallback is not enabled")
)

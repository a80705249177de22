// Package usecase orchestrates master secret lifecycle operations on top of
// the key service layer.
package usecase

import (
	"context"
)

// MasterSecretUseCase manages the in-process master secret through its handle.
type MasterSecretUseCase interface {
	// Load decrypts the persisted master secret (creating one on first run)
	// and installs it in the process-wide handle. Called once at startup.
	Load(ctx context.Context) error

	// Rotate archives the current secret, installs a fresh one, and swaps the
	// handle so subsequent derivations use the new secret. Requires the
	// authorizing operator and a reason for the audit trail. Every token
	// issued before rotation stops being verifiable.
	Rotate(ctx context.Context, authorizedBy, reason string) error
}

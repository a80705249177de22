package usecase

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/studentsync/tokenizer/internal/errors"
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
	"github.com/studentsync/tokenizer/internal/keys/service"
)

type masterSecretUseCase struct {
	store  service.SecretStore
	handle *keysDomain.SecretHandle
	logger *slog.Logger
}

// NewMasterSecretUseCase creates a MasterSecretUseCase backed by the given
// store and handle.
func NewMasterSecretUseCase(
	store service.SecretStore,
	handle *keysDomain.SecretHandle,
	logger *slog.Logger,
) MasterSecretUseCase {
	return &masterSecretUseCase{
		store:  store,
		handle: handle,
		logger: logger,
	}
}

// Load decrypts or creates the master secret and installs it in the handle.
func (u *masterSecretUseCase) Load(ctx context.Context) error {
	secret, err := u.store.LoadOrCreate(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to load master secret")
	}

	if prev := u.handle.Swap(secret); prev != nil {
		prev.Destroy()
	}

	u.logger.Info("master secret loaded")
	return nil
}

// Rotate replaces the persisted secret and swaps the handle.
func (u *masterSecretUseCase) Rotate(ctx context.Context, authorizedBy, reason string) error {
	if strings.TrimSpace(authorizedBy) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rotation requires an authorizing operator")
	}
	if strings.TrimSpace(reason) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rotation requires a reason")
	}

	secret, err := u.store.Rotate(ctx, authorizedBy, reason)
	if err != nil {
		return apperrors.Wrap(err, "failed to rotate master secret")
	}

	if prev := u.handle.Swap(secret); prev != nil {
		prev.Destroy()
	}

	return nil
}

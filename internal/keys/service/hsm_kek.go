package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// wrappedKekFile is the name of the KEK ciphertext inside the secure storage
// directory. The file holds the KEK wrapped by the hardware key and is
// useless without access to the configured KMS/HSM.
const wrappedKekFile = "kek.wrapped"

// HSMKekProvider obtains the KEK through a hardware security module or cloud
// KMS. On first use it generates a 256-bit KEK locally, wraps it with the
// hardware key and persists only the wrapped form; subsequent startups unwrap
// it through the same keeper. An unreachable configured endpoint is an error,
// never a silent downgrade.
type HSMKekProvider struct {
	kmsService  KMSService
	keyURI      string
	storagePath string
	logger      *slog.Logger
}

// NewHSMKekProvider creates a new hardware-backed KEK provider.
func NewHSMKekProvider(
	kmsService KMSService,
	keyURI, storagePath string,
	logger *slog.Logger,
) *HSMKekProvider {
	return &HSMKekProvider{
		kmsService:  kmsService,
		keyURI:      keyURI,
		storagePath: storagePath,
		logger:      logger,
	}
}

// Backend identifies this provider as the hardware backend.
func (p *HSMKekProvider) Backend() keysDomain.Backend {
	return keysDomain.BackendHSM
}

// Obtain unwraps the persisted KEK through the configured keeper, or
// generates and wraps a new one when no wrapped KEK exists yet.
func (p *HSMKekProvider) Obtain(ctx context.Context) ([]byte, error) {
	if p.keyURI == "" {
		return nil, fmt.Errorf("%w: KMS_KEY_URI is not configured", keysDomain.ErrBackendUnavailable)
	}

	keeper, err := p.kmsService.OpenKeeper(ctx, p.keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keysDomain.ErrBackendUnavailable, err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			p.logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	path := filepath.Join(p.storagePath, wrappedKekFile)
	wrapped, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read wrapped KEK: %w", err)
		}
		return p.createKek(ctx, keeper, path)
	}

	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unwrap KEK", keysDomain.ErrBackendUnavailable)
	}
	if len(key) != keysDomain.KeySize {
		keysDomain.Zero(key)
		return nil, keysDomain.ErrInvalidKeySize
	}

	return key, nil
}

// createKek generates a fresh KEK, wraps it with the hardware key and
// persists the wrapped form atomically with owner-only permissions.
func (p *HSMKekProvider) createKek(
	ctx context.Context,
	keeper keysDomain.KMSKeeper,
	path string,
) ([]byte, error) {
	key := make([]byte, keysDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate KEK: %w", err)
	}

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		keysDomain.Zero(key)
		return nil, fmt.Errorf("%w: failed to wrap KEK", keysDomain.ErrBackendUnavailable)
	}

	if err := os.MkdirAll(p.storagePath, 0o700); err != nil {
		keysDomain.Zero(key)
		return nil, fmt.Errorf("failed to create secure storage directory: %w", err)
	}
	if err := atomicWriteFile(path, wrapped, 0o600); err != nil {
		keysDomain.Zero(key)
		return nil, fmt.Errorf("failed to persist wrapped KEK: %w", err)
	}

	p.logger.Info("generated new hardware-wrapped KEK",
		slog.String("path", path),
	)
	return key, nil
}

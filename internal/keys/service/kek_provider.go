package service

import (
	"context"
	"log/slog"

	apperrors "github.com/studentsync/tokenizer/internal/errors"
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// backendProvider is a single KEK backend strategy.
type backendProvider interface {
	// Backend identifies the strategy.
	Backend() keysDomain.Backend

	// Obtain returns 32 bytes of KEK material. The caller owns the slice and
	// must zero it after wrapping it in a KeyEncryptionKey.
	Obtain(ctx context.Context) ([]byte, error)
}

// backendOrder is the preference order for fallback: hardware first,
// platform storage second, software derivation last.
var backendOrder = []keysDomain.Backend{
	keysDomain.BackendHSM,
	keysDomain.BackendPlatform,
	keysDomain.BackendSoftware,
}

// ChainKekProvider implements KekProvider by trying the configured backend
// and, only when fallback is explicitly enabled, the remaining backends in
// preference order. Silent fallback is deliberately not supported: a failed
// backend without the fallback flag aborts startup.
type ChainKekProvider struct {
	primary         keysDomain.Backend
	fallbackEnabled bool
	providers       map[keysDomain.Backend]backendProvider
	logger          *slog.Logger
}

// NewKekProvider creates a ChainKekProvider starting at the configured backend.
func NewKekProvider(
	primary keysDomain.Backend,
	fallbackEnabled bool,
	hsm *HSMKekProvider,
	platform *PlatformKekProvider,
	software *SoftwareKekProvider,
	logger *slog.Logger,
) *ChainKekProvider {
	return &ChainKekProvider{
		primary:         primary,
		fallbackEnabled: fallbackEnabled,
		providers: map[keysDomain.Backend]backendProvider{
			keysDomain.BackendHSM:      hsm,
			keysDomain.BackendPlatform: platform,
			keysDomain.BackendSoftware: software,
		},
		logger: logger,
	}
}

// Initialize obtains the KEK, called once at process start.
// Returns a configuration error when the configured backend fails and
// fallback is not enabled, or when every permitted backend fails.
func (p *ChainKekProvider) Initialize(ctx context.Context) (*keysDomain.KeyEncryptionKey, error) {
	if err := p.primary.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}

	var lastErr error
	active := false
	for _, backend := range backendOrder {
		if backend == p.primary {
			active = true
		}
		if !active {
			continue
		}

		provider := p.providers[backend]
		key, err := provider.Obtain(ctx)
		if err != nil {
			lastErr = err
			if !p.fallbackEnabled {
				p.logger.Error("key backend failed and fallback is disabled",
					slog.String("backend", backend.String()),
					slog.Any("error", err),
				)
				return nil, keysDomain.ErrFallbackDisabled
			}
			p.logger.Warn("key backend failed, falling back to next backend",
				slog.String("backend", backend.String()),
				slog.Any("error", err),
			)
			continue
		}

		kek, err := keysDomain.NewKeyEncryptionKey(backend, key)
		keysDomain.Zero(key)
		if err != nil {
			return nil, err
		}

		p.logger.Info("key encryption key initialized",
			slog.String("backend", backend.String()),
		)
		return kek, nil
	}

	if lastErr != nil {
		return nil, apperrors.Wrap(keysDomain.ErrBackendUnavailable, lastErr.Error())
	}
	return nil, keysDomain.ErrBackendUnavailable
}

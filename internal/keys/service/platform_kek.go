package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// PlatformKekProvider would obtain the KEK from OS-level protected key
// storage (e.g., a TPM-backed keystore). No supported platform integration
// ships yet, so the provider always reports itself unavailable; the chain
// falls through to the software backend only when fallback is explicitly
// enabled.
type PlatformKekProvider struct {
	logger *slog.Logger
}

// NewPlatformKekProvider creates a new platform key storage provider.
func NewPlatformKekProvider(logger *slog.Logger) *PlatformKekProvider {
	return &PlatformKekProvider{logger: logger}
}

// Backend identifies this provider as the platform backend.
func (p *PlatformKekProvider) Backend() keysDomain.Backend {
	return keysDomain.BackendPlatform
}

// Obtain reports the platform keystore as unavailable on the current OS.
func (p *PlatformKekProvider) Obtain(ctx context.Context) ([]byte, error) {
	p.logger.Warn("platform key storage is not supported on this OS",
		slog.String("os", runtime.GOOS),
	)
	return nil, fmt.Errorf(
		"%w: platform key storage not supported on %s",
		keysDomain.ErrBackendUnavailable, runtime.GOOS,
	)
}

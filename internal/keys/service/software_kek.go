package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"runtime"
	"strings"

	"golang.org/x/crypto/hkdf"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// defaultFallbackSalt is mixed into the software derivation when no salt is
// configured. It provides domain separation only, not secrecy.
const defaultFallbackSalt = "studentsync-tokenizer-kek-v1"

// kekDerivationInfo is the HKDF info string binding derived keys to this use.
const kekDerivationInfo = "key-encryption-key"

// SoftwareKekProvider derives the KEK from machine identity (user name, OS,
// architecture, hostname) with HKDF-SHA256 and a fixed application salt.
//
// The machine identity is low-entropy and guessable, so this backend is a
// weak substitute for hardware key protection and is intended for development
// only. Every Obtain logs a warning so operators cannot silently rely on it
// in production.
type SoftwareKekProvider struct {
	appSalt string
	logger  *slog.Logger
}

// NewSoftwareKekProvider creates a new software-derived KEK provider.
// An empty appSalt falls back to a built-in development salt.
func NewSoftwareKekProvider(appSalt string, logger *slog.Logger) *SoftwareKekProvider {
	if appSalt == "" {
		appSalt = defaultFallbackSalt
	}
	return &SoftwareKekProvider{appSalt: appSalt, logger: logger}
}

// Backend identifies this provider as the software backend.
func (p *SoftwareKekProvider) Backend() keysDomain.Backend {
	return keysDomain.BackendSoftware
}

// Obtain derives the KEK from machine identity. Deterministic for a given
// machine and salt, so the same key is regenerated on every startup.
func (p *SoftwareKekProvider) Obtain(ctx context.Context) ([]byte, error) {
	identity, err := machineIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to collect machine identity: %w", err)
	}

	reader := hkdf.New(sha256.New, []byte(identity), []byte(p.appSalt), []byte(kekDerivationInfo))
	key := make([]byte, keysDomain.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive KEK: %w", err)
	}

	p.logger.Warn(
		"software-derived KEK is active; machine-identity derivation is a weak substitute for hardware key protection and must not be used in production",
	)
	return key, nil
}

// machineIdentity builds the pipe-delimited environment-bound input for KEK derivation.
func machineIdentity() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}

	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	parts := []string{username, runtime.GOOS, runtime.GOARCH, hostname}
	return strings.Join(parts, "|"), nil
}

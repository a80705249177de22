package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

const (
	// masterSecretFile is the name of the active encrypted master secret
	// inside the secure storage directory.
	masterSecretFile = "master.secret"

	// archiveTimeFormat names rotation archives, e.g. master.secret.20260829T143000Z.
	archiveTimeFormat = "20060102T150405Z"

	// aeadNonceSize is the nonce length prepended to the ciphertext on disk.
	// Both supported AEADs (AES-256-GCM, ChaCha20-Poly1305) use 12-byte nonces.
	aeadNonceSize = 12
)

// FileSecretStore implements SecretStore over a secure storage directory.
// The active secret lives in a single file as nonce||ciphertext, encrypted
// under the KEK; rotated-out ciphertexts are archived under timestamped names
// for audit only and are never used for derivation again.
type FileSecretStore struct {
	storagePath string
	aeadManager AEADManager
	algorithm   keysDomain.Algorithm
	kek         *keysDomain.KeyEncryptionKey
	logger      *slog.Logger
}

// NewFileSecretStore creates a secret store rooted at storagePath.
func NewFileSecretStore(
	storagePath string,
	aeadManager AEADManager,
	algorithm keysDomain.Algorithm,
	kek *keysDomain.KeyEncryptionKey,
	logger *slog.Logger,
) *FileSecretStore {
	return &FileSecretStore{
		storagePath: storagePath,
		aeadManager: aeadManager,
		algorithm:   algorithm,
		kek:         kek,
		logger:      logger,
	}
}

// cipher builds an AEAD instance keyed with the KEK. The intermediate key
// copy is zeroed before returning.
func (s *FileSecretStore) cipher() (AEAD, error) {
	key := s.kek.Bytes()
	defer keysDomain.Zero(key)
	return s.aeadManager.CreateCipher(key, s.algorithm)
}

// LoadOrCreate decrypts the persisted master secret, or generates and
// persists a fresh one on first startup. A file that exists but cannot be
// authenticated with the current KEK fails closed with ErrSecretCorrupted;
// the tokenization subsystem must not start in that state.
func (s *FileSecretStore) LoadOrCreate(ctx context.Context) (*keysDomain.MasterSecret, error) {
	path := filepath.Join(s.storagePath, masterSecretFile)

	blob, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read master secret file: %w", err)
		}
		return s.create(path)
	}

	if len(blob) <= aeadNonceSize {
		return nil, keysDomain.ErrSecretCorrupted
	}
	nonce, ciphertext := blob[:aeadNonceSize], blob[aeadNonceSize:]

	aead, err := s.cipher()
	if err != nil {
		return nil, err
	}

	key, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return nil, keysDomain.ErrSecretCorrupted
	}
	defer keysDomain.Zero(key)

	createdAt := time.Now().UTC()
	if info, err := os.Stat(path); err == nil {
		createdAt = info.ModTime().UTC()
	}

	return keysDomain.NewMasterSecret(key, createdAt)
}

// Rotate archives the current encrypted secret under a timestamped name,
// then generates, encrypts and atomically installs a fresh one. The archive
// write happens first so a crash mid-rotation never loses the old ciphertext.
// All previously issued tokens lose verifiability going forward.
func (s *FileSecretStore) Rotate(
	ctx context.Context,
	authorizedBy, reason string,
) (*keysDomain.MasterSecret, error) {
	path := filepath.Join(s.storagePath, masterSecretFile)

	current, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, keysDomain.ErrSecretNotLoaded
		}
		return nil, fmt.Errorf("failed to read master secret file: %w", err)
	}

	archivePath := fmt.Sprintf("%s.%s", path, time.Now().UTC().Format(archiveTimeFormat))
	if err := atomicWriteFile(archivePath, current, 0o600); err != nil {
		return nil, fmt.Errorf("failed to archive master secret: %w", err)
	}

	secret, err := s.create(path)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("master secret rotated; all previously issued tokens are no longer verifiable",
		slog.String("authorized_by", authorizedBy),
		slog.String("reason", reason),
		slog.String("archive", filepath.Base(archivePath)),
	)

	return secret, nil
}

// create generates a fresh 32-byte secret, encrypts it under the KEK and
// atomically writes nonce||ciphertext with owner-only permissions.
func (s *FileSecretStore) create(path string) (*keysDomain.MasterSecret, error) {
	key := make([]byte, keysDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master secret: %w", err)
	}
	defer keysDomain.Zero(key)

	aead, err := s.cipher()
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := aead.Encrypt(key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt master secret: %w", err)
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	if err := os.MkdirAll(s.storagePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create secure storage directory: %w", err)
	}
	if err := atomicWriteFile(path, blob, 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist master secret: %w", err)
	}

	createdAt := time.Now().UTC()
	s.logger.Info("generated new master secret")

	return keysDomain.NewMasterSecret(key, createdAt)
}

// atomicWriteFile writes data to a temporary file in the target directory and
// renames it into place, so readers never observe a partially written file.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

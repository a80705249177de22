package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKek(t *testing.T) *keysDomain.KeyEncryptionKey {
	t.Helper()
	kek, err := keysDomain.NewKeyEncryptionKey(keysDomain.BackendSoftware, testKey(t))
	require.NoError(t, err)
	return kek
}

func newTestStore(t *testing.T, dir string, kek *keysDomain.KeyEncryptionKey) *FileSecretStore {
	t.Helper()
	return NewFileSecretStore(dir, NewAEADManager(), keysDomain.AESGCM, kek, testLogger())
}

func TestFileSecretStore_LoadOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates secret on first startup", func(t *testing.T) {
		dir := t.TempDir()
		store := newTestStore(t, dir, testKek(t))

		secret, err := store.LoadOrCreate(ctx)
		require.NoError(t, err)
		assert.Len(t, secret.Bytes(), keysDomain.KeySize)

		info, err := os.Stat(filepath.Join(dir, masterSecretFile))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("loads same secret on subsequent startup", func(t *testing.T) {
		dir := t.TempDir()
		kek := testKek(t)

		first, err := newTestStore(t, dir, kek).LoadOrCreate(ctx)
		require.NoError(t, err)

		second, err := newTestStore(t, dir, kek).LoadOrCreate(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.Bytes(), second.Bytes())
	})

	t.Run("fails closed with wrong KEK", func(t *testing.T) {
		dir := t.TempDir()

		_, err := newTestStore(t, dir, testKek(t)).LoadOrCreate(ctx)
		require.NoError(t, err)

		_, err = newTestStore(t, dir, testKek(t)).LoadOrCreate(ctx)
		assert.ErrorIs(t, err, keysDomain.ErrSecretCorrupted)
	})

	t.Run("fails closed on tampered ciphertext", func(t *testing.T) {
		dir := t.TempDir()
		kek := testKek(t)

		_, err := newTestStore(t, dir, kek).LoadOrCreate(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, masterSecretFile)
		blob, err := os.ReadFile(path)
		require.NoError(t, err)
		blob[len(blob)-1] ^= 0xff
		require.NoError(t, os.WriteFile(path, blob, 0o600))

		_, err = newTestStore(t, dir, kek).LoadOrCreate(ctx)
		assert.ErrorIs(t, err, keysDomain.ErrSecretCorrupted)
	})

	t.Run("fails closed on truncated file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, masterSecretFile)
		require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

		_, err := newTestStore(t, dir, testKek(t)).LoadOrCreate(ctx)
		assert.ErrorIs(t, err, keysDomain.ErrSecretCorrupted)
	})
}

func TestFileSecretStore_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces secret and archives previous ciphertext", func(t *testing.T) {
		dir := t.TempDir()
		kek := testKek(t)
		store := newTestStore(t, dir, kek)

		original, err := store.LoadOrCreate(ctx)
		require.NoError(t, err)

		rotated, err := store.Rotate(ctx, "admin@school.example", "suspected exposure")
		require.NoError(t, err)
		assert.NotEqual(t, original.Bytes(), rotated.Bytes())

		// Active file now decrypts to the rotated secret
		loaded, err := store.LoadOrCreate(ctx)
		require.NoError(t, err)
		assert.Equal(t, rotated.Bytes(), loaded.Bytes())

		// One timestamped archive exists
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		archives := 0
		for _, entry := range entries {
			if entry.Name() != masterSecretFile {
				archives++
			}
		}
		assert.Equal(t, 1, archives)
	})

	t.Run("fails without an existing secret", func(t *testing.T) {
		store := newTestStore(t, t.TempDir(), testKek(t))
		_, err := store.Rotate(ctx, "admin@school.example", "reason")
		assert.ErrorIs(t, err, keysDomain.ErrSecretNotLoaded)
	})
}

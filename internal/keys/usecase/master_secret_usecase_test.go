package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/studentsync/tokenizer/internal/errors"
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

type mockSecretStore struct {
	mock.Mock
}

func (m *mockSecretStore) LoadOrCreate(ctx context.Context) (*keysDomain.MasterSecret, error) {
	args := m.Called(ctx)
	if secret := args.Get(0); secret != nil {
		return secret.(*keysDomain.MasterSecret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSecretStore) Rotate(
	ctx context.Context,
	authorizedBy, reason string,
) (*keysDomain.MasterSecret, error) {
	args := m.Called(ctx, authorizedBy, reason)
	if secret := args.Get(0); secret != nil {
		return secret.(*keysDomain.MasterSecret), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSecret(t *testing.T, fill byte) *keysDomain.MasterSecret {
	t.Helper()
	key := bytes.Repeat([]byte{fill}, keysDomain.KeySize)
	secret, err := keysDomain.NewMasterSecret(key, time.Now().UTC())
	require.NoError(t, err)
	return secret
}

func TestMasterSecretUseCase_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("installs the loaded secret", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(nil)
		loaded := newSecret(t, 0x11)

		store.On("LoadOrCreate", ctx).Return(loaded, nil).Once()

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		require.NoError(t, uc.Load(ctx))

		current, err := handle.Current()
		require.NoError(t, err)
		assert.Equal(t, loaded.Hex(), current.Hex())
		store.AssertExpectations(t)
	})

	t.Run("replaces a previously loaded secret", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(newSecret(t, 0x11))
		reloaded := newSecret(t, 0x22)

		store.On("LoadOrCreate", ctx).Return(reloaded, nil).Once()

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		require.NoError(t, uc.Load(ctx))

		current, err := handle.Current()
		require.NoError(t, err)
		assert.Equal(t, reloaded.Hex(), current.Hex())
	})

	t.Run("corrupted store fails closed", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(nil)

		store.On("LoadOrCreate", ctx).Return(nil, keysDomain.ErrSecretCorrupted).Once()

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		err := uc.Load(ctx)

		require.ErrorIs(t, err, apperrors.ErrConfiguration)

		_, err = handle.Current()
		assert.ErrorIs(t, err, keysDomain.ErrSecretNotLoaded)
	})
}

func TestMasterSecretUseCase_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps the handle to the fresh secret", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(newSecret(t, 0x11))
		fresh := newSecret(t, 0x22)

		store.On("Rotate", ctx, "ops@district", "annual ceremony").Return(fresh, nil).Once()

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		require.NoError(t, uc.Rotate(ctx, "ops@district", "annual ceremony"))

		current, err := handle.Current()
		require.NoError(t, err)
		assert.Equal(t, fresh.Hex(), current.Hex())
		store.AssertExpectations(t)
	})

	t.Run("requires an authorizing operator", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(newSecret(t, 0x11))

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		err := uc.Rotate(ctx, "   ", "reason")

		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		store.AssertNotCalled(t, "Rotate")
	})

	t.Run("requires a reason", func(t *testing.T) {
		store := &mockSecretStore{}
		handle := keysDomain.NewSecretHandle(newSecret(t, 0x11))

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		err := uc.Rotate(ctx, "ops@district", "")

		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		store.AssertNotCalled(t, "Rotate")
	})

	t.Run("store failure leaves the current secret active", func(t *testing.T) {
		store := &mockSecretStore{}
		existing := newSecret(t, 0x11)
		handle := keysDomain.NewSecretHandle(existing)

		store.On("Rotate", ctx, "ops@district", "reason").
			Return(nil, keysDomain.ErrSecretNotLoaded).Once()

		uc := NewMasterSecretUseCase(store, handle, testLogger())
		err := uc.Rotate(ctx, "ops@district", "reason")

		require.Error(t, err)

		current, currErr := handle.Current()
		require.NoError(t, currErr)
		assert.Equal(t, existing.Hex(), current.Hex())
	})
}

package app

import (
	"context"
	"fmt"
	"sync"

	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
	keysService "github.com/studentsync/tokenizer/internal/keys/service"
	keysUsecase "github.com/studentsync/tokenizer/internal/keys/usecase"
)

// keysComponents groups the key-management wiring inside the container.
type keysComponents struct {
	kek          *keysDomain.KeyEncryptionKey
	secretHandle *keysDomain.SecretHandle
	secretStore  keysService.SecretStore
	useCase      keysUsecase.MasterSecretUseCase

	kekInit          sync.Once
	secretHandleInit sync.Once
	secretStoreInit  sync.Once
	useCaseInit      sync.Once
}

// Kek obtains the Key-Encryption-Key from the configured backend.
// The backend chain performs I/O (KMS calls, file reads), so initialization
// happens under the caller's context.
func (c *Container) Kek(ctx context.Context) (*keysDomain.KeyEncryptionKey, error) {
	c.keys.kekInit.Do(func() {
		logger := c.Logger()

		provider := keysService.NewKekProvider(
			keysDomain.Backend(c.config.KeyBackend),
			c.config.KeyFallbackEnabled,
			keysService.NewHSMKekProvider(
				keysService.NewKMSService(),
				c.config.KMSKeyURI,
				c.config.SecureStoragePath,
				logger,
			),
			keysService.NewPlatformKekProvider(logger),
			keysService.NewSoftwareKekProvider(c.config.SoftwareFallbackSalt, logger),
			logger,
		)

		kek, err := provider.Initialize(ctx)
		if err != nil {
			c.initErrors["kek"] = err
			return
		}
		c.keys.kek = kek
	})
	if storedErr, exists := c.initErrors["kek"]; exists {
		return nil, storedErr
	}
	return c.keys.kek, nil
}

// SecretHandle returns the process-wide master secret handle. The handle is
// empty until MasterSecretUseCase.Load installs a secret.
func (c *Container) SecretHandle() *keysDomain.SecretHandle {
	c.keys.secretHandleInit.Do(func() {
		c.keys.secretHandle = keysDomain.NewSecretHandle(nil)
	})
	return c.keys.secretHandle
}

// SecretStore returns the encrypted master secret store.
func (c *Container) SecretStore(ctx context.Context) (keysService.SecretStore, error) {
	c.keys.secretStoreInit.Do(func() {
		kek, err := c.Kek(ctx)
		if err != nil {
			c.initErrors["secretStore"] = fmt.Errorf("failed to get KEK for secret store: %w", err)
			return
		}

		c.keys.secretStore = keysService.NewFileSecretStore(
			c.config.SecureStoragePath,
			keysService.NewAEADManager(),
			keysDomain.Algorithm(c.config.SecretCipher),
			kek,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.keys.secretStore, nil
}

// MasterSecretUseCase returns the master secret lifecycle use case.
func (c *Container) MasterSecretUseCase(ctx context.Context) (keysUsecase.MasterSecretUseCase, error) {
	c.keys.useCaseInit.Do(func() {
		store, err := c.SecretStore(ctx)
		if err != nil {
			c.initErrors["masterSecretUseCase"] = fmt.Errorf(
				"failed to get secret store for master secret use case: %w", err)
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["masterSecretUseCase"] = fmt.Errorf(
				"failed to get metrics for master secret use case: %w", err)
			return
		}

		useCase := keysUsecase.NewMasterSecretUseCase(store, c.SecretHandle(), c.Logger())
		c.keys.useCase = keysUsecase.NewMasterSecretUseCaseWithMetrics(useCase, bm)
	})
	if storedErr, exists := c.initErrors["masterSecretUseCase"]; exists {
		return nil, storedErr
	}
	return c.keys.useCase, nil
}

package app

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	tokensRepository "github.com/studentsync/tokenizer/internal/tokens/repository"
	tokensService "github.com/studentsync/tokenizer/internal/tokens/service"
	tokensUsecase "github.com/studentsync/tokenizer/internal/tokens/usecase"
)

// tokensComponents groups the token lifecycle wiring inside the container.
type tokensComponents struct {
	repo      tokensUsecase.TokenRepository
	generator tokensService.Generator
	useCase   tokensUsecase.LifecycleUseCase

	repoInit      sync.Once
	generatorInit sync.Once
	useCaseInit   sync.Once
}

// TokenRepository returns the token repository for the configured driver.
func (c *Container) TokenRepository() (tokensUsecase.TokenRepository, error) {
	c.tokens.repoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["tokenRepo"] = fmt.Errorf("failed to get database for token repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.tokens.repo = tokensRepository.NewMySQLTokenRepository(db)
		case "postgres":
			c.tokens.repo = tokensRepository.NewPostgreSQLTokenRepository(db)
		default:
			c.initErrors["tokenRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokens.repo, nil
}

// TokenGenerator returns the deterministic token generator.
func (c *Container) TokenGenerator() (tokensService.Generator, error) {
	c.tokens.generatorInit.Do(func() {
		repo, err := c.TokenRepository()
		if err != nil {
			c.initErrors["tokenGenerator"] = fmt.Errorf(
				"failed to get token repository for generator: %w", err)
			return
		}
		c.tokens.generator = tokensService.NewHashGenerator(repo)
	})
	if storedErr, exists := c.initErrors["tokenGenerator"]; exists {
		return nil, storedErr
	}
	return c.tokens.generator, nil
}

// LifecycleUseCase returns the token lifecycle use case.
// The master secret must be loaded through MasterSecretUseCase before any
// lifecycle operation derives a token.
func (c *Container) LifecycleUseCase() (tokensUsecase.LifecycleUseCase, error) {
	c.tokens.useCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = fmt.Errorf(
				"failed to get tx manager for lifecycle use case: %w", err)
			return
		}

		repo, err := c.TokenRepository()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = fmt.Errorf(
				"failed to get token repository for lifecycle use case: %w", err)
			return
		}

		generator, err := c.TokenGenerator()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = fmt.Errorf(
				"failed to get generator for lifecycle use case: %w", err)
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = fmt.Errorf(
				"failed to get metrics for lifecycle use case: %w", err)
			return
		}

		var limiter *rate.Limiter
		if c.config.BatchRateLimitEnabled {
			limiter = rate.NewLimiter(rate.Limit(c.config.BatchRatePerSec), c.config.BatchRateBurst)
		}

		useCase := tokensUsecase.NewLifecycleUseCase(
			txManager,
			repo,
			generator,
			c.SecretHandle(),
			c.Logger(),
			c.config.BatchConcurrency,
			limiter,
		)
		c.tokens.useCase = tokensUsecase.NewLifecycleUseCaseWithMetrics(useCase, bm)
	})
	if storedErr, exists := c.initErrors["lifecycleUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokens.useCase, nil
}

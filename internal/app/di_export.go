package app

import (
	"fmt"
	"sync"

	exportRepository "github.com/studentsync/tokenizer/internal/export/repository"
	exportUsecase "github.com/studentsync/tokenizer/internal/export/usecase"
)

// exportComponents groups the tokenized export wiring inside the container.
type exportComponents struct {
	store   exportUsecase.StudentRecordStore
	useCase exportUsecase.ExportUseCase

	storeInit   sync.Once
	useCaseInit sync.Once
}

// StudentRecordStore returns the student record store for the configured driver.
func (c *Container) StudentRecordStore() (exportUsecase.StudentRecordStore, error) {
	c.export.storeInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["studentStore"] = fmt.Errorf("failed to get database for student store: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.export.store = exportRepository.NewMySQLStudentStore(db)
		case "postgres":
			c.export.store = exportRepository.NewPostgreSQLStudentStore(db)
		default:
			c.initErrors["studentStore"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["studentStore"]; exists {
		return nil, storedErr
	}
	return c.export.store, nil
}

// ExportUseCase returns the tokenized export builder.
func (c *Container) ExportUseCase() (exportUsecase.ExportUseCase, error) {
	c.export.useCaseInit.Do(func() {
		store, err := c.StudentRecordStore()
		if err != nil {
			c.initErrors["exportUseCase"] = fmt.Errorf(
				"failed to get student store for export use case: %w", err)
			return
		}

		repo, err := c.TokenRepository()
		if err != nil {
			c.initErrors["exportUseCase"] = fmt.Errorf(
				"failed to get token repository for export use case: %w", err)
			return
		}

		lifecycle, err := c.LifecycleUseCase()
		if err != nil {
			c.initErrors["exportUseCase"] = fmt.Errorf(
				"failed to get lifecycle use case for export use case: %w", err)
			return
		}

		c.export.useCase = exportUsecase.NewExportUseCase(store, repo, lifecycle, c.Logger())
	})
	if storedErr, exists := c.initErrors["exportUseCase"]; exists {
		return nil, storedErr
	}
	return c.export.useCase, nil
}

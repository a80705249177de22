package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/studentsync/tokenizer/internal/app"
	"github.com/studentsync/tokenizer/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getTokenCommands()...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getExportCommands()...)
	return cmds
}

// setupContainer loads and validates configuration and builds the DI container.
func setupContainer() (*app.Container, *slog.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	container := app.NewContainer(cfg)
	return container, container.Logger(), nil
}

// loadMasterSecret initializes the key hierarchy and loads the master secret
// into memory. Commands that derive token values need this before any
// lifecycle operation runs.
func loadMasterSecret(ctx context.Context, container *app.Container) error {
	masterSecretUseCase, err := container.MasterSecretUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize master secret use case: %w", err)
	}
	if err := masterSecretUseCase.Load(ctx); err != nil {
		return fmt.Errorf("failed to load master secret: %w", err)
	}
	return nil
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/studentsync/tokenizer/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, logger, err := setupContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				cfg := container.Config()
				return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "ops-server",
			Usage: "Start the operational HTTP server (metrics and health endpoints)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunOpsServer(ctx, version)
			},
		},
	}
}

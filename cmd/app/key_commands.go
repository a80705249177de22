package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/studentsync/tokenizer/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "rotate-master-secret",
			Usage: "Generate a new master secret and archive the previous one",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "authorized-by",
					Required: true,
					Usage:    "Operator authorizing the rotation",
				},
				&cli.StringFlag{
					Name:     "reason",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Reason for the rotation (e.g., scheduled, suspected-compromise)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, _, err := setupContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				masterSecretUseCase, err := container.MasterSecretUseCase(ctx)
				if err != nil {
					return fmt.Errorf("failed to initialize master secret use case: %w", err)
				}

				return commands.RunRotateMasterSecret(
					ctx,
					masterSecretUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("authorized-by"),
					cmd.String("reason"),
					cmd.String("format"),
				)
			},
		},
	}
}

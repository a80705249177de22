package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/studentsync/tokenizer/cmd/app/commands"
)

func getExportCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "export",
			Usage: "Build a tokenized, PII-free sync batch for downstream systems",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "subjects",
					Aliases: []string{"s"},
					Usage:   "Comma-separated student identifiers (omit for a full sync)",
				},
				&cli.StringFlag{
					Name:  "file",
					Usage: "Path to a file with one student identifier per line",
				},
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "json",
					Usage:   "Output format: 'json' or 'text'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				subjectIDs := commands.ParseSubjectList(cmd.String("subjects"))
				if path := cmd.String("file"); path != "" {
					fromFile, err := commands.ReadSubjectFile(path)
					if err != nil {
						return err
					}
					subjectIDs = append(subjectIDs, fromFile...)
				}

				container, _, err := setupContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				if err := loadMasterSecret(ctx, container); err != nil {
					return err
				}

				buildUseCase, err := container.ExportUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize export use case: %w", err)
				}

				return commands.RunExport(
					ctx,
					buildUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					subjectIDs,
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
	}
}

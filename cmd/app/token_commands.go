package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/studentsync/tokenizer/cmd/app/commands"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Issue an anonymized token for a student",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "subject-id",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Internal student identifier",
				},
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
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

				if err := loadMasterSecret(ctx, container); err != nil {
					return err
				}

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunIssueToken(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("subject-id"),
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-token",
			Usage: "Rotate a student's token, deactivating the current one",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "subject-id",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Internal student identifier",
				},
				&cli.StringFlag{
					Name:     "reason",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Reason recorded on the replacement token",
				},
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
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

				if err := loadMasterSecret(ctx, container); err != nil {
					return err
				}

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunRotateToken(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("subject-id"),
					cmd.String("reason"),
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "resolve-token",
			Usage: "Resolve a token back to its student identifier (audited)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Token value (e.g., STU-A1B2C3)",
				},
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
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

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunResolveToken(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "validate-token",
			Usage: "Check a token's status without revealing the student behind it",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Token value to check",
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

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunValidateToken(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "batch-issue",
			Usage: "Issue tokens for every listed student lacking one for the current period",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "subjects",
					Aliases: []string{"s"},
					Usage:   "Comma-separated student identifiers",
				},
				&cli.StringFlag{
					Name:    "file",
					Usage:   "Path to a file with one student identifier per line",
				},
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
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

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunBatchIssue(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					subjectIDs,
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "annual-rotate",
			Usage: "Rotate every student still holding a token from a previous school year",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "actor",
					Aliases: []string{"a"},
					Usage:   "Acting principal recorded for the audit trail",
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

				if err := loadMasterSecret(ctx, container); err != nil {
					return err
				}

				lifecycleUseCase, err := container.LifecycleUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
				}

				return commands.RunAnnualRotate(
					ctx,
					lifecycleUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("format"),
				)
			},
		},
	}
}

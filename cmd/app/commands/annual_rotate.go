package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
)

// RunAnnualRotate rotates every subject whose active token belongs to an
// earlier school-year period. Subjects already holding a current-period token
// are left untouched, so the command is safe to re-run.
//
// Requirements: Database must be migrated and the master secret loadable.
func RunAnnualRotate(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	actor string,
	format string,
) error {
	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("starting annual rotation", slog.String("actor", actor))

	summary, err := lifecycleUseCase.AnnualRotate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run annual rotation: %w", err)
	}

	if format == "json" {
		outputRotationSummaryJSON(out, summary)
	} else {
		outputRotationSummaryText(out, summary)
	}

	logger.Info("annual rotation completed",
		slog.Int("rotated", summary.Rotated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.String("actor", actor),
	)

	return nil
}

// outputRotationSummaryText outputs the rotation summary in human-readable text format.
func outputRotationSummaryText(out io.Writer, summary *tokensUseCase.RotationSummary) {
	fmt.Fprintln(out, "Annual rotation completed")
	fmt.Fprintf(out, "  Rotated: %d\n", summary.Rotated)
	fmt.Fprintf(out, "  Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(out, "  Failed:  %d\n", summary.Failed)

	if len(summary.Errors) > 0 {
		fmt.Fprintln(out, "  Failures:")
		ids := make([]string, 0, len(summary.Errors))
		for id := range summary.Errors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "    %s: %s\n", id, summary.Errors[id])
		}
	}
}

// outputRotationSummaryJSON outputs the rotation summary in JSON format.
func outputRotationSummaryJSON(out io.Writer, summary *tokensUseCase.RotationSummary) {
	result := map[string]interface{}{
		"rotated": summary.Rotated,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}
	if len(summary.Errors) > 0 {
		result["errors"] = summary.Errors
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}

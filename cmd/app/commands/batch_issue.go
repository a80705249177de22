package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
)

// RunBatchIssue issues tokens for every listed subject that lacks an active
// token for the current period. Subjects already covered are skipped and
// per-subject failures never abort the batch.
//
// Requirements: Database must be migrated and the master secret loadable.
func RunBatchIssue(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	subjectIDs []string,
	actor string,
	format string,
) error {
	if len(subjectIDs) == 0 {
		return fmt.Errorf("no subject ids provided")
	}

	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("batch issuing tokens",
		slog.Int("subjects", len(subjectIDs)),
		slog.String("actor", actor),
	)

	summary, err := lifecycleUseCase.BatchIssue(ctx, subjectIDs)
	if err != nil {
		return fmt.Errorf("failed to batch issue tokens: %w", err)
	}

	if format == "json" {
		outputBatchSummaryJSON(out, summary)
	} else {
		outputBatchSummaryText(out, summary)
	}

	logger.Info("batch issuance completed",
		slog.Int("generated", summary.Generated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.String("actor", actor),
	)

	return nil
}

// ParseSubjectList splits a comma-separated list of subject identifiers,
// trimming whitespace and dropping empty entries.
func ParseSubjectList(list string) []string {
	var subjectIDs []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			subjectIDs = append(subjectIDs, part)
		}
	}
	return subjectIDs
}

// ReadSubjectFile reads subject identifiers from a file, one per line. Blank
// lines and lines starting with '#' are ignored.
func ReadSubjectFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subject file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var subjectIDs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		subjectIDs = append(subjectIDs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subject file: %w", err)
	}

	return subjectIDs, nil
}

// outputBatchSummaryText outputs the batch summary in human-readable text format.
func outputBatchSummaryText(out io.Writer, summary *tokensUseCase.BatchSummary) {
	fmt.Fprintln(out, "Batch issuance completed")
	fmt.Fprintf(out, "  Generated: %d\n", summary.Generated)
	fmt.Fprintf(out, "  Skipped:   %d\n", summary.Skipped)
	fmt.Fprintf(out, "  Failed:    %d\n", summary.Failed)

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

// outputBatchSummaryJSON outputs the batch summary in JSON format.
func outputBatchSummaryJSON(out io.Writer, summary *tokensUseCase.BatchSummary) {
	result := map[string]interface{}{
		"generated": summary.Generated,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
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

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/studentsync/tokenizer/internal/audit"
	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
	exportUseCase "github.com/studentsync/tokenizer/internal/export/usecase"
)

// RunExport builds a tokenized sync batch and writes it to the output writer.
// With an empty subject list the batch covers every known subject. The emitted
// records carry tokens and non-identifying attributes only; names, birth dates
// and subject identifiers never appear in the output.
//
// Requirements: Database must be migrated and the master secret loadable.
func RunExport(
	ctx context.Context,
	buildUseCase exportUseCase.ExportUseCase,
	logger *slog.Logger,
	out io.Writer,
	subjectIDs []string,
	actor string,
	format string,
) error {
	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("building tokenized export",
		slog.Int("subjects", len(subjectIDs)),
		slog.Bool("full_sync", len(subjectIDs) == 0),
		slog.String("actor", actor),
	)

	var (
		records []exportDomain.TokenizedRecord
		err     error
	)
	if len(subjectIDs) == 0 {
		records, err = buildUseCase.BuildFullSync(ctx)
	} else {
		records, err = buildUseCase.BuildSyncBatch(ctx, subjectIDs)
	}
	if err != nil {
		return fmt.Errorf("failed to build export: %w", err)
	}

	if format == "text" {
		outputExportText(out, records)
	} else {
		if err := outputExportJSON(out, records); err != nil {
			return err
		}
	}

	logger.Info("export completed",
		slog.Int("records", len(records)),
		slog.String("actor", actor),
	)

	return nil
}

// outputExportText outputs the batch as one line per record.
func outputExportText(out io.Writer, records []exportDomain.TokenizedRecord) {
	fmt.Fprintf(out, "Exported %d record(s)\n", len(records))
	for _, r := range records {
		fmt.Fprintf(out, "  %s  grade=%s status=%s period=%s checksum=%s\n",
			r.Token, r.GradeLevel, r.EnrollmentStatus, r.Period, r.Checksum)
	}
}

// outputExportJSON outputs the batch as a JSON array for downstream consumers.
func outputExportJSON(out io.Writer, records []exportDomain.TokenizedRecord) error {
	if records == nil {
		records = []exportDomain.TokenizedRecord{}
	}

	jsonBytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
)

func TestRunExport(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	records := []exportDomain.TokenizedRecord{
		{Token: "STU-A1B2C3", GradeLevel: "7", EnrollmentStatus: "enrolled", Period: "2025-2026", Checksum: "deadbeef"},
		{Token: "STU-D4E5F6", GradeLevel: "8", EnrollmentStatus: "enrolled", Period: "2025-2026", Checksum: "cafebabe"},
	}

	t.Run("sync-batch-json", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildSyncBatch", withPrincipal("sis-sync"), []string{"subject-001", "subject-002"}).
			Return(records, nil)

		var out bytes.Buffer
		err := RunExport(ctx, mockUseCase, logger, &out, []string{"subject-001", "subject-002"}, "sis-sync", "json")

		require.NoError(t, err)

		var decoded []exportDomain.TokenizedRecord
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		require.Equal(t, "STU-A1B2C3", decoded[0].Token)
		mockUseCase.AssertExpectations(t)
		mockUseCase.AssertNotCalled(t, "BuildFullSync", ctx)
	})

	t.Run("full-sync-when-no-subjects", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildFullSync", withPrincipal("sis-sync")).Return(records, nil)

		var out bytes.Buffer
		err := RunExport(ctx, mockUseCase, logger, &out, nil, "sis-sync", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), "STU-D4E5F6")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildFullSync", withPrincipal("sis-sync")).Return(records, nil)

		var out bytes.Buffer
		err := RunExport(ctx, mockUseCase, logger, &out, nil, "sis-sync", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Exported 2 record(s)")
		require.Contains(t, out.String(), "grade=7")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-batch-emits-empty-array", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildFullSync", withPrincipal("sis-sync")).
			Return([]exportDomain.TokenizedRecord{}, nil)

		var out bytes.Buffer
		err := RunExport(ctx, mockUseCase, logger, &out, nil, "sis-sync", "json")

		require.NoError(t, err)
		require.JSONEq(t, "[]", out.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("output-carries-no-subject-identifiers", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildSyncBatch", withPrincipal("sis-sync"), []string{"subject-001"}).
			Return(records[:1], nil)

		var out bytes.Buffer
		err := RunExport(ctx, mockUseCase, logger, &out, []string{"subject-001"}, "sis-sync", "json")

		require.NoError(t, err)
		require.NotContains(t, out.String(), "subject-001")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("build-failure", func(t *testing.T) {
		mockUseCase := &mockExportUseCase{}
		mockUseCase.On("BuildFullSync", withPrincipal("sis-sync")).
			Return(nil, errors.New("store unavailable"))

		err := RunExport(ctx, mockUseCase, logger, &bytes.Buffer{}, nil, "sis-sync", "json")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to build export")
		mockUseCase.AssertExpectations(t)
	})
}

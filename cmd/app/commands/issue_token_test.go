package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

func testToken(value string) *tokensDomain.Token {
	return &tokensDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		Value:     value,
		SubjectID: "subject-001",
		Period:    "2025-2026",
		CreatedAt: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC),
		Active:    true,
		CreatedBy: "registrar",
	}
}

func withPrincipal(principal string) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return audit.Principal(ctx) == principal
	})
}

func TestRunIssueToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Issue", withPrincipal("registrar"), "subject-001").
			Return(testToken("STU-A1B2C3"), nil)

		var out bytes.Buffer
		err := RunIssueToken(ctx, mockUseCase, logger, &out, "subject-001", "registrar", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Token issued successfully")
		require.Contains(t, out.String(), "STU-A1B2C3")
		require.Contains(t, out.String(), "2025-2026")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Issue", withPrincipal("registrar"), "subject-001").
			Return(testToken("STU-D4E5F6"), nil)

		var out bytes.Buffer
		err := RunIssueToken(ctx, mockUseCase, logger, &out, "subject-001", "registrar", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token": "STU-D4E5F6"`)
		require.Contains(t, out.String(), `"period": "2025-2026"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("defaults-to-system-principal", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Issue", withPrincipal(audit.SystemPrincipal), "subject-001").
			Return(testToken("STU-A1B2C3"), nil)

		err := RunIssueToken(ctx, mockUseCase, logger, &bytes.Buffer{}, "subject-001", "", "text")

		require.NoError(t, err)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-subject-id", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}

		err := RunIssueToken(ctx, mockUseCase, logger, &bytes.Buffer{}, "  padded  ", "registrar", "text")

		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("active-token-exists", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Issue", mock.Anything, "subject-001").
			Return(nil, tokensDomain.ErrActiveTokenExists)

		err := RunIssueToken(ctx, mockUseCase, logger, &bytes.Buffer{}, "subject-001", "registrar", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to issue token")
		mockUseCase.AssertExpectations(t)
	})
}

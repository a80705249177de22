package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

func TestRunRotateToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	rotated := testToken("STU-0FF1CE")
	rotated.RotationCount = 1
	reason := "suspected exposure"
	rotated.RotationReason = &reason
	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	rotated.LastRotatedAt = &now

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Rotate", withPrincipal("registrar"), "subject-001", "suspected exposure").
			Return(rotated, nil)

		var out bytes.Buffer
		err := RunRotateToken(ctx, mockUseCase, logger, &out, "subject-001", "suspected exposure", "registrar", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Token rotated successfully")
		require.Contains(t, out.String(), "STU-0FF1CE")
		require.Contains(t, out.String(), "Rotation: 1")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Rotate", withPrincipal("registrar"), "subject-001", "suspected exposure").
			Return(rotated, nil)

		var out bytes.Buffer
		err := RunRotateToken(ctx, mockUseCase, logger, &out, "subject-001", "suspected exposure", "registrar", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token": "STU-0FF1CE"`)
		require.Contains(t, out.String(), `"rotation_count": 1`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("missing-reason", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}

		err := RunRotateToken(ctx, mockUseCase, logger, &bytes.Buffer{}, "subject-001", "   ", "registrar", "text")

		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no-active-token", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockUseCase.On("Rotate", mock.Anything, "subject-001", "lost device").
			Return(nil, tokensDomain.ErrTokenNotFound)

		err := RunRotateToken(ctx, mockUseCase, logger, &bytes.Buffer{}, "subject-001", "lost device", "registrar", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to rotate token")
		mockUseCase.AssertExpectations(t)
	})
}

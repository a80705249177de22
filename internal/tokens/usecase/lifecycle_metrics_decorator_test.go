package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

type mockLifecycle struct {
	mock.Mock
}

func (m *mockLifecycle) Issue(ctx context.Context, subjectID string) (*tokensDomain.Token, error) {
	args := m.Called(ctx, subjectID)
	if token := args.Get(0); token != nil {
		return token.(*tokensDomain.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLifecycle) Rotate(
	ctx context.Context,
	subjectID, reason string,
) (*tokensDomain.Token, error) {
	args := m.Called(ctx, subjectID, reason)
	if token := args.Get(0); token != nil {
		return token.(*tokensDomain.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLifecycle) Resolve(ctx context.Context, tokenValue string) (string, error) {
	args := m.Called(ctx, tokenValue)
	return args.String(0), args.Error(1)
}

func (m *mockLifecycle) Validate(
	ctx context.Context,
	tokenValue string,
) (*tokensDomain.ValidationResult, error) {
	args := m.Called(ctx, tokenValue)
	if result := args.Get(0); result != nil {
		return result.(*tokensDomain.ValidationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLifecycle) BatchIssue(ctx context.Context, subjectIDs []string) (*BatchSummary, error) {
	args := m.Called(ctx, subjectIDs)
	if summary := args.Get(0); summary != nil {
		return summary.(*BatchSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLifecycle) AnnualRotate(ctx context.Context) (*RotationSummary, error) {
	args := m.Called(ctx)
	if summary := args.Get(0); summary != nil {
		return summary.(*RotationSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLifecycleUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("records success for issue", func(t *testing.T) {
		next := &mockLifecycle{}
		m := &mockBusinessMetrics{}
		token := newActiveToken("subject-001", "STU-A1B2C3", "2025-2026")

		next.On("Issue", ctx, "subject-001").Return(token, nil).Once()
		m.On("RecordOperation", ctx, "tokens", "issue", "success").Once()
		m.On("RecordDuration", ctx, "tokens", "issue", mock.Anything, "success").Once()

		uc := NewLifecycleUseCaseWithMetrics(next, m)
		got, err := uc.Issue(ctx, "subject-001")

		require.NoError(t, err)
		assert.Equal(t, token, got)
		m.AssertExpectations(t)
	})

	t.Run("records error status and passes the error through", func(t *testing.T) {
		next := &mockLifecycle{}
		m := &mockBusinessMetrics{}

		next.On("Rotate", ctx, "subject-001", "reason").
			Return(nil, errors.New("connection reset")).Once()
		m.On("RecordOperation", ctx, "tokens", "rotate", "error").Once()
		m.On("RecordDuration", ctx, "tokens", "rotate", mock.Anything, "error").Once()

		uc := NewLifecycleUseCaseWithMetrics(next, m)
		_, err := uc.Rotate(ctx, "subject-001", "reason")

		require.Error(t, err)
		m.AssertExpectations(t)
	})

	t.Run("covers every operation", func(t *testing.T) {
		next := &mockLifecycle{}
		m := &mockBusinessMetrics{}
		token := newActiveToken("subject-001", "STU-A1B2C3", "2025-2026")

		next.On("Issue", ctx, "s").Return(token, nil).Once()
		next.On("Rotate", ctx, "s", "r").Return(token, nil).Once()
		next.On("Resolve", ctx, "STU-A1B2C3").Return("subject-001", nil).Once()
		next.On("Validate", ctx, "STU-A1B2C3").
			Return(&tokensDomain.ValidationResult{Status: tokensDomain.StatusValid}, nil).Once()
		next.On("BatchIssue", ctx, []string{"s"}).Return(&BatchSummary{}, nil).Once()
		next.On("AnnualRotate", ctx).Return(&RotationSummary{}, nil).Once()

		for _, op := range []string{"issue", "rotate", "resolve", "validate", "batch_issue", "annual_rotate"} {
			m.On("RecordOperation", ctx, "tokens", op, "success").Once()
			m.On("RecordDuration", ctx, "tokens", op, mock.Anything, "success").Once()
		}

		uc := NewLifecycleUseCaseWithMetrics(next, m)
		_, _ = uc.Issue(ctx, "s")
		_, _ = uc.Rotate(ctx, "s", "r")
		_, _ = uc.Resolve(ctx, "STU-A1B2C3")
		_, _ = uc.Validate(ctx, "STU-A1B2C3")
		_, _ = uc.BatchIssue(ctx, []string{"s"})
		_, _ = uc.AnnualRotate(ctx)

		m.AssertExpectations(t)
		next.AssertExpectations(t)
	})
}

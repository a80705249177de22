package usecase

import (
	"context"
	"time"

	"github.com/studentsync/tokenizer/internal/metrics"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

// lifecycleUseCaseWithMetrics decorates LifecycleUseCase with metrics instrumentation.
type lifecycleUseCaseWithMetrics struct {
	next    LifecycleUseCase
	metrics metrics.BusinessMetrics
}

// NewLifecycleUseCaseWithMetrics wraps a LifecycleUseCase with metrics recording.
func NewLifecycleUseCaseWithMetrics(
	useCase LifecycleUseCase,
	m metrics.BusinessMetrics,
) LifecycleUseCase {
	return &lifecycleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (l *lifecycleUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	l.metrics.RecordOperation(ctx, "tokens", operation, status)
	l.metrics.RecordDuration(ctx, "tokens", operation, time.Since(start), status)
}

// Issue records metrics for token issuance.
func (l *lifecycleUseCaseWithMetrics) Issue(
	ctx context.Context,
	subjectID string,
) (*tokensDomain.Token, error) {
	start := time.Now()
	token, err := l.next.Issue(ctx, subjectID)
	l.record(ctx, "issue", start, err)
	return token, err
}

// Rotate records metrics for token rotation.
func (l *lifecycleUseCaseWithMetrics) Rotate(
	ctx context.Context,
	subjectID, reason string,
) (*tokensDomain.Token, error) {
	start := time.Now()
	token, err := l.next.Rotate(ctx, subjectID, reason)
	l.record(ctx, "rotate", start, err)
	return token, err
}

// Resolve records metrics for reverse lookups.
func (l *lifecycleUseCaseWithMetrics) Resolve(
	ctx context.Context,
	tokenValue string,
) (string, error) {
	start := time.Now()
	subjectID, err := l.next.Resolve(ctx, tokenValue)
	l.record(ctx, "resolve", start, err)
	return subjectID, err
}

// Validate records metrics for token validation.
func (l *lifecycleUseCaseWithMetrics) Validate(
	ctx context.Context,
	tokenValue string,
) (*tokensDomain.ValidationResult, error) {
	start := time.Now()
	result, err := l.next.Validate(ctx, tokenValue)
	l.record(ctx, "validate", start, err)
	return result, err
}

// BatchIssue records metrics for batch issuance.
func (l *lifecycleUseCaseWithMetrics) BatchIssue(
	ctx context.Context,
	subjectIDs []string,
) (*BatchSummary, error) {
	start := time.Now()
	summary, err := l.next.BatchIssue(ctx, subjectIDs)
	l.record(ctx, "batch_issue", start, err)
	return summary, err
}

// AnnualRotate records metrics for the yearly rotation run.
func (l *lifecycleUseCaseWithMetrics) AnnualRotate(ctx context.Context) (*RotationSummary, error) {
	start := time.Now()
	summary, err := l.next.AnnualRotate(ctx)
	l.record(ctx, "annual_rotate", start, err)
	return summary, err
}

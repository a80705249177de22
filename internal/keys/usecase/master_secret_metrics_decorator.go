package usecase

import (
	"context"
	"time"

	"github.com/studentsync/tokenizer/internal/metrics"
)

// masterSecretUseCaseWithMetrics decorates MasterSecretUseCase with metrics instrumentation.
type masterSecretUseCaseWithMetrics struct {
	next    MasterSecretUseCase
	metrics metrics.BusinessMetrics
}

// NewMasterSecretUseCaseWithMetrics wraps a MasterSecretUseCase with metrics recording.
func NewMasterSecretUseCaseWithMetrics(
	useCase MasterSecretUseCase,
	m metrics.BusinessMetrics,
) MasterSecretUseCase {
	return &masterSecretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *masterSecretUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "keys", operation, status)
	u.metrics.RecordDuration(ctx, "keys", operation, time.Since(start), status)
}

// Load records metrics for the startup load.
func (u *masterSecretUseCaseWithMetrics) Load(ctx context.Context) error {
	start := time.Now()
	err := u.next.Load(ctx)
	u.record(ctx, "load_master_secret", start, err)
	return err
}

// Rotate records metrics for master secret rotation.
func (u *masterSecretUseCaseWithMetrics) Rotate(ctx context.Context, authorizedBy, reason string) error {
	start := time.Now()
	err := u.next.Rotate(ctx, authorizedBy, reason)
	u.record(ctx, "rotate_master_secret", start, err)
	return err
}

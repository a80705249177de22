package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/studentsync/tokenizer/internal/database"
	apperrors "github.com/studentsync/tokenizer/internal/errors"
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
	tokensService "github.com/studentsync/tokenizer/internal/tokens/service"
)

const annualRotationReason = "annual-rotation"

// lifecycleUseCase implements LifecycleUseCase.
type lifecycleUseCase struct {
	txManager   database.TxManager
	tokenRepo   TokenRepository
	generator   tokensService.Generator
	secrets     *keysDomain.SecretHandle
	logger      *slog.Logger
	concurrency int
	limiter     *rate.Limiter // nil when batch throttling is disabled
}

// NewLifecycleUseCase creates a LifecycleUseCase with injected dependencies.
// A nil limiter disables batch throttling.
func NewLifecycleUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	generator tokensService.Generator,
	secrets *keysDomain.SecretHandle,
	logger *slog.Logger,
	concurrency int,
	limiter *rate.Limiter,
) LifecycleUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &lifecycleUseCase{
		txManager:   txManager,
		tokenRepo:   tokenRepo,
		generator:   generator,
		secrets:     secrets,
		logger:      logger,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// Issue mints a token for the subject under the current school year.
func (l *lifecycleUseCase) Issue(
	ctx context.Context,
	subjectID string,
) (*tokensDomain.Token, error) {
	now := time.Now().UTC()
	period := tokensDomain.CurrentPeriod(now)

	existing, err := l.tokenRepo.GetActiveBySubject(ctx, subjectID, period)
	if err != nil && !apperrors.Is(err, tokensDomain.ErrTokenNotFound) {
		return nil, err
	}
	if existing != nil {
		if !existing.IsExpired(now) {
			return nil, tokensDomain.ErrActiveTokenExists
		}
		// An expired token cannot validate anymore; clear it and reissue.
		if err := l.tokenRepo.Deactivate(ctx, existing.ID, now); err != nil {
			return nil, err
		}
	}

	return l.issue(ctx, subjectID, period, 0, nil, nil)
}

// issue generates and persists a token. The application-level existence check
// in Issue can race; the unique index makes the insert itself authoritative
// and the conflict error surfaces unchanged.
func (l *lifecycleUseCase) issue(
	ctx context.Context,
	subjectID, period string,
	rotationCount int,
	rotationReason *string,
	lastRotatedAt *time.Time,
) (*tokensDomain.Token, error) {
	secret, err := l.secrets.Current()
	if err != nil {
		return nil, err
	}

	token, err := l.generator.Generate(ctx, subjectID, period, secret)
	if err != nil {
		return nil, err
	}
	token.RotationCount = rotationCount
	token.RotationReason = rotationReason
	token.LastRotatedAt = lastRotatedAt

	if err := l.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	l.logger.Info("token issued",
		slog.String("token_id", token.ID.String()),
		slog.String("period", token.Period),
		slog.Int("rotation_count", token.RotationCount),
	)
	return token, nil
}

// Rotate deactivates every active token the subject holds and issues a
// replacement.
func (l *lifecycleUseCase) Rotate(
	ctx context.Context,
	subjectID, reason string,
) (*tokensDomain.Token, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, tokensDomain.ErrReasonRequired
	}

	var token *tokensDomain.Token
	err := l.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		token, txErr = l.rotateSubject(txCtx, subjectID, reason)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	l.logger.Warn("token rotated",
		slog.String("token_id", token.ID.String()),
		slog.String("period", token.Period),
		slog.Int("rotation_count", token.RotationCount),
		slog.String("reason", reason),
	)
	return token, nil
}

// rotateSubject holds the transactional body shared by Rotate and
// AnnualRotate: deactivate everything active, then issue the replacement.
func (l *lifecycleUseCase) rotateSubject(
	ctx context.Context,
	subjectID, reason string,
) (*tokensDomain.Token, error) {
	active, err := l.tokenRepo.ListActiveBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, tokensDomain.ErrTokenNotFound
	}

	now := time.Now().UTC()
	maxCount := 0
	for _, token := range active {
		if token.RotationCount > maxCount {
			maxCount = token.RotationCount
		}
		if err := l.tokenRepo.Deactivate(ctx, token.ID, now); err != nil {
			return nil, err
		}
	}

	period := tokensDomain.CurrentPeriod(now)
	return l.issue(ctx, subjectID, period, maxCount+1, &reason, &now)
}

// Resolve maps a token value back to its subject identifier.
func (l *lifecycleUseCase) Resolve(ctx context.Context, tokenValue string) (string, error) {
	if !tokensDomain.ValidTokenFormat(tokenValue) {
		return "", tokensDomain.ErrInvalidTokenFormat
	}

	token, err := l.tokenRepo.GetByValue(ctx, tokenValue)
	if err != nil {
		return "", err
	}
	return token.SubjectID, nil
}

// Validate classifies a token value. Lookup failures other than not-found are
// returned as errors; every recognized state maps to a result, not an error.
func (l *lifecycleUseCase) Validate(
	ctx context.Context,
	tokenValue string,
) (*tokensDomain.ValidationResult, error) {
	if !tokensDomain.ValidTokenFormat(tokenValue) {
		return &tokensDomain.ValidationResult{Status: tokensDomain.StatusInvalidFormat}, nil
	}

	token, err := l.tokenRepo.GetByValue(ctx, tokenValue)
	if err != nil {
		if apperrors.Is(err, tokensDomain.ErrTokenNotFound) {
			return &tokensDomain.ValidationResult{Status: tokensDomain.StatusNotFound}, nil
		}
		return nil, err
	}

	result := &tokensDomain.ValidationResult{
		Period:    token.Period,
		CreatedAt: token.CreatedAt,
		ExpiresAt: token.ExpiresAt,
	}
	switch {
	case !token.Active:
		result.Status = tokensDomain.StatusDeactivated
	case token.IsExpired(time.Now().UTC()):
		result.Status = tokensDomain.StatusExpired
	default:
		result.Status = tokensDomain.StatusValid
	}
	return result, nil
}

// BatchIssue issues tokens for every subject lacking an active token for the
// current period.
func (l *lifecycleUseCase) BatchIssue(
	ctx context.Context,
	subjectIDs []string,
) (*BatchSummary, error) {
	summary := &BatchSummary{Errors: make(map[string]string)}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)

	for _, subjectID := range subjectIDs {
		group.Go(func() error {
			if err := l.waitForSlot(groupCtx); err != nil {
				return err
			}

			_, err := l.Issue(groupCtx, subjectID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Generated++
			case apperrors.Is(err, tokensDomain.ErrActiveTokenExists):
				summary.Skipped++
			default:
				summary.Failed++
				summary.Errors[subjectID] = err.Error()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return summary, err
	}

	l.logger.Info("batch issuance finished",
		slog.Int("generated", summary.Generated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

// AnnualRotate rotates every subject whose active token belongs to an earlier
// period. Each subject rotates in its own transaction so one failure cannot
// roll back another subject's completed rotation.
func (l *lifecycleUseCase) AnnualRotate(ctx context.Context) (*RotationSummary, error) {
	now := time.Now().UTC()
	period := tokensDomain.CurrentPeriod(now)

	stale, err := l.tokenRepo.ListActiveOutsidePeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	// A subject may hold several stale tokens; rotate each subject once.
	subjects := make([]string, 0, len(stale))
	seen := make(map[string]struct{}, len(stale))
	for _, token := range stale {
		if _, ok := seen[token.SubjectID]; ok {
			continue
		}
		seen[token.SubjectID] = struct{}{}
		subjects = append(subjects, token.SubjectID)
	}

	summary := &RotationSummary{Errors: make(map[string]string)}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)

	for _, subjectID := range subjects {
		group.Go(func() error {
			if err := l.waitForSlot(groupCtx); err != nil {
				return err
			}

			var rotated bool
			err := l.txManager.WithTx(groupCtx, func(txCtx context.Context) error {
				var txErr error
				rotated, txErr = l.annualRotateSubject(txCtx, subjectID, period)
				return txErr
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				summary.Errors[subjectID] = err.Error()
			case rotated:
				summary.Rotated++
			default:
				summary.Skipped++
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return summary, err
	}

	l.logger.Warn("annual rotation finished",
		slog.String("period", period),
		slog.Int("rotated", summary.Rotated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

// annualRotateSubject deactivates the subject's stale tokens and, unless the
// subject already holds a current-period token, issues a replacement. Reports
// whether a new token was minted.
func (l *lifecycleUseCase) annualRotateSubject(
	ctx context.Context,
	subjectID, period string,
) (bool, error) {
	active, err := l.tokenRepo.ListActiveBySubject(ctx, subjectID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	maxCount := 0
	current := false
	for _, token := range active {
		if token.Period == period {
			current = true
			continue
		}
		if token.RotationCount > maxCount {
			maxCount = token.RotationCount
		}
		if err := l.tokenRepo.Deactivate(ctx, token.ID, now); err != nil {
			return false, err
		}
	}
	if current {
		return false, nil
	}

	reason := annualRotationReason
	if _, err := l.issue(ctx, subjectID, period, maxCount+1, &reason, &now); err != nil {
		return false, err
	}
	return true, nil
}

func (l *lifecycleUseCase) waitForSlot(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

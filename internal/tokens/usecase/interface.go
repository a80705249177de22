// Package usecase implements token lifecycle business logic: issuance,
// rotation, resolution, validation and the yearly re-key over all subjects.
//
// Resolve is the only path in the codebase that returns a subject identifier
// for a token. Everything outside this package sees tokens only.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

// TokenRepository defines the interface for token persistence.
type TokenRepository interface {
	// Create inserts a token. Returns ErrActiveTokenExists when the subject
	// already holds an active token for the period, ErrTokenCollision when
	// the value is taken.
	Create(ctx context.Context, token *tokensDomain.Token) error
	GetActiveBySubject(ctx context.Context, subjectID, period string) (*tokensDomain.Token, error)
	GetByValue(ctx context.Context, value string) (*tokensDomain.Token, error)
	ExistsByValue(ctx context.Context, value string) (bool, error)
	Deactivate(ctx context.Context, tokenID uuid.UUID, deactivatedAt time.Time) error
	ListActiveBySubject(ctx context.Context, subjectID string) ([]*tokensDomain.Token, error)
	ListActiveByPeriod(ctx context.Context, period string) ([]*tokensDomain.Token, error)
	ListActiveOutsidePeriod(ctx context.Context, period string) ([]*tokensDomain.Token, error)
}

// BatchSummary reports the outcome of a batch issuance. Per-subject failures
// never abort the batch; they are collected here instead.
type BatchSummary struct {
	Generated int
	Skipped   int
	Failed    int
	Errors    map[string]string // subject id -> failure message
}

// RotationSummary reports the outcome of an annual rotation run.
type RotationSummary struct {
	Rotated int
	Skipped int
	Failed  int
	Errors  map[string]string // subject id -> failure message
}

// LifecycleUseCase defines the interface for token lifecycle operations.
type LifecycleUseCase interface {
	// Issue mints a token for the subject under the current school year.
	// Returns ErrActiveTokenExists if the subject already holds a usable
	// token for that period; issuance is deliberately not idempotent.
	Issue(ctx context.Context, subjectID string) (*tokensDomain.Token, error)

	// Rotate deactivates every active token the subject holds and issues a
	// replacement tagged with an incremented rotation count and the reason.
	// The reason is mandatory. Returns ErrTokenNotFound when the subject has
	// no active token.
	Rotate(ctx context.Context, subjectID, reason string) (*tokensDomain.Token, error)

	// Resolve maps a token value back to its subject identifier. This is the
	// single controlled reverse-lookup path.
	Resolve(ctx context.Context, tokenValue string) (string, error)

	// Validate classifies a token value without revealing the subject:
	// invalid-format, not-found, deactivated, expired or valid.
	Validate(ctx context.Context, tokenValue string) (*tokensDomain.ValidationResult, error)

	// BatchIssue issues tokens for every subject lacking an active token for
	// the current period. Subjects already covered are skipped.
	BatchIssue(ctx context.Context, subjectIDs []string) (*BatchSummary, error)

	// AnnualRotate rotates every subject whose active token belongs to an
	// earlier period. Subjects already current are untouched.
	AnnualRotate(ctx context.Context) (*RotationSummary, error)
}

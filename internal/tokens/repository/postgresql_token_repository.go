// Package repository implements token persistence. Repositories support both
// PostgreSQL and MySQL; the one-active-token-per-subject-and-period rule is
// enforced by a database unique index so concurrent issuance cannot race past
// the application-level check.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studentsync/tokenizer/internal/database"
	apperrors "github.com/studentsync/tokenizer/internal/errors"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL databases.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository instance.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new token. A unique index violation on the active
// subject+period slot maps to ErrActiveTokenExists; a violation on the token
// value means the collision check raced and maps to ErrTokenCollision.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokensDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO student_tokens (id, value, subject_id, period, per_token_salt, created_at,
				  expires_at, active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.Value,
		token.SubjectID,
		token.Period,
		token.PerTokenSalt,
		token.CreatedAt,
		token.ExpiresAt,
		token.Active,
		token.RotationCount,
		token.RotationReason,
		token.LastRotatedAt,
		token.DeactivatedAt,
		token.CreatedBy,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			// The constraint name tells which rule was broken: the partial
			// index on (subject_id, period) or the unique token value.
			if strings.Contains(err.Error(), "idx_student_tokens_active") {
				return tokensDomain.ErrActiveTokenExists
			}
			return tokensDomain.ErrTokenCollision
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetActiveBySubject retrieves the active token for a subject within a period.
func (p *PostgreSQLTokenRepository) GetActiveBySubject(
	ctx context.Context,
	subjectID, period string,
) (*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE subject_id = $1 AND period = $2 AND active
			  LIMIT 1`

	token, err := scanPostgreSQLToken(querier.QueryRowContext(ctx, query, subjectID, period))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active token by subject")
	}
	return token, nil
}

// GetByValue retrieves a token by its text value regardless of state. Resolve
// and validate need deactivated and expired rows too, so no active filter here.
func (p *PostgreSQLTokenRepository) GetByValue(
	ctx context.Context,
	value string,
) (*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE value = $1
			  LIMIT 1`

	token, err := scanPostgreSQLToken(querier.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token by value")
	}
	return token, nil
}

// ExistsByValue reports whether any token, active or not, holds the value.
func (p *PostgreSQLTokenRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM student_tokens WHERE value = $1)`
	if err := querier.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check token value existence")
	}
	return exists, nil
}

// Deactivate marks a token inactive and records when it happened.
func (p *PostgreSQLTokenRepository) Deactivate(
	ctx context.Context,
	tokenID uuid.UUID,
	deactivatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE student_tokens
			  SET active = FALSE, deactivated_at = $1
			  WHERE id = $2 AND active`

	result, err := querier.ExecContext(ctx, query, deactivatedAt, tokenID)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate token")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read deactivate result")
	}
	if rows == 0 {
		return tokensDomain.ErrTokenNotFound
	}
	return nil
}

// ListActiveByPeriod returns all active tokens for a period, oldest first.
func (p *PostgreSQLTokenRepository) ListActiveByPeriod(
	ctx context.Context,
	period string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE period = $1 AND active
			  ORDER BY created_at`

	return p.queryTokens(ctx, query, period)
}

// ListActiveOutsidePeriod returns active tokens whose period differs from the
// given one. Annual rotation uses it to find subjects still carrying a token
// from an earlier school year.
func (p *PostgreSQLTokenRepository) ListActiveOutsidePeriod(
	ctx context.Context,
	period string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE period <> $1 AND active
			  ORDER BY created_at`

	return p.queryTokens(ctx, query, period)
}

// ListActiveBySubject returns all active tokens a subject holds across periods.
func (p *PostgreSQLTokenRepository) ListActiveBySubject(
	ctx context.Context,
	subjectID string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE subject_id = $1 AND active
			  ORDER BY created_at`

	return p.queryTokens(ctx, query, subjectID)
}

func (p *PostgreSQLTokenRepository) queryTokens(
	ctx context.Context,
	query string,
	args ...any,
) ([]*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query tokens")
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*tokensDomain.Token
	for rows.Next() {
		token, err := scanPostgreSQLToken(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token row")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate token rows")
	}
	return tokens, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLToken(row rowScanner) (*tokensDomain.Token, error) {
	var token tokensDomain.Token
	err := row.Scan(
		&token.ID,
		&token.Value,
		&token.SubjectID,
		&token.Period,
		&token.PerTokenSalt,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Active,
		&token.RotationCount,
		&token.RotationReason,
		&token.LastRotatedAt,
		&token.DeactivatedAt,
		&token.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

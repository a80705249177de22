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

// MySQLTokenRepository implements Token persistence for MySQL databases.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL Token repository instance.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new token, mapping unique key violations to the matching
// domain conflict error.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *tokensDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO student_tokens (id, value, subject_id, period, per_token_salt, created_at,
				  expires_at, active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		if isMySQLUniqueViolation(err) {
			if strings.Contains(err.Error(), "active_slot") {
				return tokensDomain.ErrActiveTokenExists
			}
			return tokensDomain.ErrTokenCollision
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetActiveBySubject retrieves the active token for a subject within a period.
func (m *MySQLTokenRepository) GetActiveBySubject(
	ctx context.Context,
	subjectID, period string,
) (*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE subject_id = ? AND period = ? AND active
			  LIMIT 1`

	token, err := scanMySQLToken(querier.QueryRowContext(ctx, query, subjectID, period))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active token by subject")
	}
	return token, nil
}

// GetByValue retrieves a token by its text value regardless of state.
func (m *MySQLTokenRepository) GetByValue(
	ctx context.Context,
	value string,
) (*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE value = ?
			  LIMIT 1`

	token, err := scanMySQLToken(querier.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token by value")
	}
	return token, nil
}

// ExistsByValue reports whether any token, active or not, holds the value.
func (m *MySQLTokenRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM student_tokens WHERE value = ?)`
	if err := querier.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check token value existence")
	}
	return exists, nil
}

// Deactivate marks a token inactive and records when it happened.
func (m *MySQLTokenRepository) Deactivate(
	ctx context.Context,
	tokenID uuid.UUID,
	deactivatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE student_tokens
			  SET active = FALSE, deactivated_at = ?
			  WHERE id = ? AND active`

	id, err := tokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	result, err := querier.ExecContext(ctx, query, deactivatedAt, id)
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
func (m *MySQLTokenRepository) ListActiveByPeriod(
	ctx context.Context,
	period string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE period = ? AND active
			  ORDER BY created_at`

	return m.queryTokens(ctx, query, period)
}

// ListActiveOutsidePeriod returns active tokens whose period differs from the
// given one.
func (m *MySQLTokenRepository) ListActiveOutsidePeriod(
	ctx context.Context,
	period string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE period <> ? AND active
			  ORDER BY created_at`

	return m.queryTokens(ctx, query, period)
}

// ListActiveBySubject returns all active tokens a subject holds across periods.
func (m *MySQLTokenRepository) ListActiveBySubject(
	ctx context.Context,
	subjectID string,
) ([]*tokensDomain.Token, error) {
	query := `SELECT id, value, subject_id, period, per_token_salt, created_at, expires_at,
				  active, rotation_count, rotation_reason, last_rotated_at, deactivated_at, created_by
			  FROM student_tokens
			  WHERE subject_id = ? AND active
			  ORDER BY created_at`

	return m.queryTokens(ctx, query, subjectID)
}

func (m *MySQLTokenRepository) queryTokens(
	ctx context.Context,
	query string,
	args ...any,
) ([]*tokensDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query tokens")
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*tokensDomain.Token
	for rows.Next() {
		token, err := scanMySQLToken(rows)
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

func scanMySQLToken(row rowScanner) (*tokensDomain.Token, error) {
	var token tokensDomain.Token
	var id []byte

	err := row.Scan(
		&id,
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

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	return &token, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

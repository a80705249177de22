// Package repository implements student record persistence for the export
// boundary. Records leave this package only through the narrow store
// interface consumed by the export builder.
package repository

import (
	"context"
	"database/sql"

	"github.com/studentsync/tokenizer/internal/database"
	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
	apperrors "github.com/studentsync/tokenizer/internal/errors"
)

// PostgreSQLStudentStore implements student record retrieval for PostgreSQL databases.
type PostgreSQLStudentStore struct {
	db *sql.DB
}

// NewPostgreSQLStudentStore creates a new PostgreSQL student store instance.
func NewPostgreSQLStudentStore(db *sql.DB) *PostgreSQLStudentStore {
	return &PostgreSQLStudentStore{db: db}
}

// GetBySubjectID retrieves the full internal record for a subject.
func (p *PostgreSQLStudentStore) GetBySubjectID(
	ctx context.Context,
	subjectID string,
) (*exportDomain.StudentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, subject_id, first_name, last_name, date_of_birth, grade_level, enrollment_status, created_at
			  FROM students
			  WHERE subject_id = $1
			  LIMIT 1`

	var record exportDomain.StudentRecord
	err := querier.QueryRowContext(ctx, query, subjectID).Scan(
		&record.ID,
		&record.SubjectID,
		&record.FirstName,
		&record.LastName,
		&record.DateOfBirth,
		&record.GradeLevel,
		&record.EnrollmentStatus,
		&record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, exportDomain.ErrStudentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get student by subject id")
	}

	return &record, nil
}

// ListSubjectIDs returns every known subject id, ordered for stable batches.
func (p *PostgreSQLStudentStore) ListSubjectIDs(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT subject_id FROM students ORDER BY subject_id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list subject ids")
	}
	defer rows.Close() //nolint:errcheck

	var subjectIDs []string
	for rows.Next() {
		var subjectID string
		if err := rows.Scan(&subjectID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan subject id")
		}
		subjectIDs = append(subjectIDs, subjectID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate subject ids")
	}
	return subjectIDs, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/studentsync/tokenizer/internal/database"
	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
	apperrors "github.com/studentsync/tokenizer/internal/errors"
)

// MySQLStudentStore implements student record retrieval for MySQL databases.
type MySQLStudentStore struct {
	db *sql.DB
}

// NewMySQLStudentStore creates a new MySQL student store instance.
func NewMySQLStudentStore(db *sql.DB) *MySQLStudentStore {
	return &MySQLStudentStore{db: db}
}

// GetBySubjectID retrieves the full internal record for a subject.
func (m *MySQLStudentStore) GetBySubjectID(
	ctx context.Context,
	subjectID string,
) (*exportDomain.StudentRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, subject_id, first_name, last_name, date_of_birth, grade_level, enrollment_status, created_at
			  FROM students
			  WHERE subject_id = ?
			  LIMIT 1`

	var record exportDomain.StudentRecord
	var id []byte
	err := querier.QueryRowContext(ctx, query, subjectID).Scan(
		&id,
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

	if err := record.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal student id")
	}
	return &record, nil
}

// ListSubjectIDs returns every known subject id, ordered for stable batches.
func (m *MySQLStudentStore) ListSubjectIDs(ctx context.Context) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

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

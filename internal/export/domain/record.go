// Package domain defines the record types crossing the export boundary.
//
// StudentRecord carries PII and exists only inside the trust boundary.
// TokenizedRecord is the only shape allowed out: token, non-identifying
// attributes and an integrity checksum.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/studentsync/tokenizer/internal/errors"
)

// ErrStudentNotFound indicates no student record exists for a subject id.
var ErrStudentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "student not found")

// checksumLength is the number of hex characters kept from the digest.
const checksumLength = 8

// StudentRecord is the internal student row. FirstName, LastName and
// DateOfBirth must never appear in anything the export builder emits.
type StudentRecord struct {
	ID               uuid.UUID
	SubjectID        string
	FirstName        string
	LastName         string
	DateOfBirth      time.Time
	GradeLevel       string
	EnrollmentStatus string
	CreatedAt        time.Time
}

// TokenizedRecord is a PII-free sync record.
type TokenizedRecord struct {
	Token            string `json:"token"`
	GradeLevel       string `json:"grade_level"`
	EnrollmentStatus string `json:"enrollment_status"`
	Period           string `json:"period"`
	Checksum         string `json:"checksum"`
}

// NewTokenizedRecord builds a sync record from a token and the student's
// non-identifying attributes, stamping the integrity checksum.
func NewTokenizedRecord(token, period string, record *StudentRecord) TokenizedRecord {
	out := TokenizedRecord{
		Token:            token,
		GradeLevel:       record.GradeLevel,
		EnrollmentStatus: record.EnrollmentStatus,
		Period:           period,
	}
	out.Checksum = Checksum(out.Token, out.GradeLevel, out.EnrollmentStatus, out.Period)
	return out
}

// Checksum hashes the exported field values and keeps a short hex prefix, so
// downstream consumers can detect field tampering or truncation in transit.
func Checksum(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])[:checksumLength]
}

// Verify recomputes the checksum from the record's fields.
func (r TokenizedRecord) Verify() bool {
	return r.Checksum == Checksum(r.Token, r.GradeLevel, r.EnrollmentStatus, r.Period)
}

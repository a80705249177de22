package domain

import (
	"github.com/studentsync/tokenizer/internal/errors"
)

var (
	// ErrTokenNotFound indicates the token value has no corresponding record.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrSubjectNotFound indicates the subject has no corresponding record.
	ErrSubjectNotFound = errors.Wrap(errors.ErrNotFound, "subject not found")

	// ErrActiveTokenExists indicates an active, unexpired token already exists
	// for the subject in the current period.
	ErrActiveTokenExists = errors.Wrap(errors.ErrConflict, "active token already exists for subject and period")

	// ErrTokenCollision indicates the derived code collided with an existing
	// token twice in a row. Given the 2^24 namespace this is an exceptional,
	// reportable condition requiring operator attention, not a retry loop.
	ErrTokenCollision = errors.Wrap(errors.ErrConflict, "token value collision persisted after retry")

	// ErrInvalidTokenFormat indicates the value does not match the token text format.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrInvalidInput, "invalid token format")

	// ErrInvalidSubjectID indicates the subject identifier failed validation.
	ErrInvalidSubjectID = errors.Wrap(errors.ErrInvalidInput, "invalid subject id")

	// ErrInvalidPeriod indicates the school-year label failed validation.
	ErrInvalidPeriod = errors.Wrap(errors.ErrInvalidInput, "invalid period")

	// ErrReasonRequired indicates a rotation was requested without a reason.
	ErrReasonRequired = errors.Wrap(errors.ErrInvalidInput, "rotation reason is required")
)

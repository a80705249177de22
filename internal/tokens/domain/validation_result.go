package domain

import (
	"time"
)

// ValidationStatus is the outcome of validating a token value. Distinct
// reasons are never collapsed into a generic "invalid": downstream audit and
// support flows depend on the distinction.
type ValidationStatus string

const (
	StatusValid         ValidationStatus = "valid"
	StatusInvalidFormat ValidationStatus = "invalid-format"
	StatusNotFound      ValidationStatus = "not-found"
	StatusDeactivated   ValidationStatus = "deactivated"
	StatusExpired       ValidationStatus = "expired"
)

// ValidationResult carries the validation outcome along with the token's
// period and timing metadata when a record was found.
type ValidationResult struct {
	Status    ValidationStatus
	Period    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Valid reports whether the result is StatusValid.
func (r ValidationResult) Valid() bool {
	return r.Status == StatusValid
}

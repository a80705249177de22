package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token represents an anonymized student identifier issued for a school-year
// period. Tokens are never deleted, only deactivated, to preserve audit
// continuity; expiration is a derived, time-based fact evaluated on every read.
type Token struct {
	ID             uuid.UUID
	Value          string // "STU-" + 6 uppercase hex chars
	SubjectID      string // internal student identifier; never crosses the trust boundary
	Period         string // school-year label, e.g. "2025-2026"
	PerTokenSalt   string // hex-encoded random salt used in derivation
	CreatedAt      time.Time
	ExpiresAt      time.Time
	Active         bool
	RotationCount  int
	RotationReason *string
	LastRotatedAt  *time.Time
	DeactivatedAt  *time.Time
	CreatedBy      string // acting principal recorded at issuance
}

// IsExpired checks if the token has expired at the given instant.
// All time comparisons use UTC.
func (t *Token) IsExpired(now time.Time) bool {
	return now.UTC().After(t.ExpiresAt.UTC())
}

// IsUsable reports whether the token is active and unexpired at the given instant.
func (t *Token) IsUsable(now time.Time) bool {
	return t.Active && !t.IsExpired(now)
}

// Package domain defines the token domain models for student identifier
// anonymization. A token is a short opaque code safe to share outside the
// trust boundary; it maps to an internal subject only through the lifecycle
// manager's resolve path.
package domain

import (
	"regexp"
)

const (
	// TokenPrefix is the fixed literal prefix of every issued token value.
	TokenPrefix = "STU-"

	// TokenCodeLength is the number of hex characters following the prefix,
	// yielding 2^24 (~16.7M) possible codes per generation attempt.
	TokenCodeLength = 6

	// PerTokenSaltSize is the size in bytes of the random salt mixed into
	// each derivation. Regenerating for the same subject never reproduces
	// the same token.
	PerTokenSaltSize = 16
)

// tokenValueRegexp matches the exact token text format: the fixed prefix
// followed by six uppercase hex characters. Case-sensitive on the hex portion.
var tokenValueRegexp = regexp.MustCompile(`^STU-[0-9A-F]{6}$`)

// ValidTokenFormat reports whether value matches the token text format.
func ValidTokenFormat(value string) bool {
	return tokenValueRegexp.MatchString(value)
}

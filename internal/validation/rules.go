// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/studentsync/tokenizer/internal/errors"
)

var (
	// tokenValueRegex matches the external token format.
	tokenValueRegex = regexp.MustCompile(`^STU-[0-9A-F]{6}$`)
	// schoolYearRegex matches the "YYYY-YYYY" school year shape.
	schoolYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// TokenValue validates the external token format ("STU-" plus six uppercase
// hex characters).
var TokenValue = validation.NewStringRuleWithError(
	func(s string) bool {
		return tokenValueRegex.MatchString(s)
	},
	validation.NewError("validation_token_value", "must look like STU-XXXXXX"),
)

// SchoolYear validates a "YYYY-YYYY" school year with consecutive years.
var SchoolYear = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_school_year_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !schoolYearRegex.MatchString(s) {
		return validation.NewError("validation_school_year", "must look like 2025-2026")
	}
	first, err := strconv.Atoi(s[:4])
	if err != nil {
		return validation.NewError("validation_school_year", "must look like 2025-2026")
	}
	second, err := strconv.Atoi(s[5:])
	if err != nil {
		return validation.NewError("validation_school_year", "must look like 2025-2026")
	}
	if second != first+1 {
		return validation.NewError("validation_school_year_span", "years must be consecutive")
	}
	return nil
})

// SubjectID validates a district-assigned student identifier: non-blank,
// no surrounding whitespace, bounded length.
var SubjectID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_subject_id_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if s != strings.TrimSpace(s) {
		return validation.NewError(
			"validation_subject_id_whitespace",
			"must not contain leading or trailing whitespace",
		)
	}
	if len(s) > 64 {
		return validation.NewError("validation_subject_id_length", "must be at most 64 characters")
	}
	return nil
})

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// A period is a school-year label such as "2025-2026". Tokens are scoped to a
// period: at most one active token exists per subject per period, and every
// token expires at the end of its period.

// periodBoundaryMonth is the month a new school year starts: July and later
// fall into the year that closes next June.
const periodBoundaryMonth = time.July

var periodRegexp = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// CurrentPeriod returns the school-year label containing the given instant.
func CurrentPeriod(now time.Time) string {
	now = now.UTC()
	year := now.Year()
	if now.Month() >= periodBoundaryMonth {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// ValidatePeriod checks the school-year label format and that the closing
// year immediately follows the opening year.
func ValidatePeriod(period string) error {
	m := periodRegexp.FindStringSubmatch(period)
	if m == nil {
		return fmt.Errorf("%w: period must look like 2025-2026", ErrInvalidPeriod)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return fmt.Errorf("%w: period years must be consecutive", ErrInvalidPeriod)
	}
	return nil
}

// PeriodEnd returns the expiration instant for tokens issued in the given
// period: June 30 of the closing year, end of day, UTC.
func PeriodEnd(period string) (time.Time, error) {
	if err := ValidatePeriod(period); err != nil {
		return time.Time{}, err
	}
	m := periodRegexp.FindStringSubmatch(period)
	end, _ := strconv.Atoi(m[2])
	return time.Date(end, time.June, 30, 23, 59, 59, 0, time.UTC), nil
}

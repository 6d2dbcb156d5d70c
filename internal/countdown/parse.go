package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date form used on every surface
const DateLayout = "2006-01-02"

// ErrInvalidTarget is returned when a target date cannot be parsed
var ErrInvalidTarget = errors.New("invalid target date")

// ParseTarget parses a calendar date (2006-01-02) in loc, or an RFC 3339
// timestamp. A nil loc means UTC.
func ParseTarget(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD or RFC 3339)", ErrInvalidTarget, s)
}

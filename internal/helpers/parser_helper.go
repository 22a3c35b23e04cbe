package helpers

import (
	"strconv"
	"strings"
	"time"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// TrimOrNil trims a form value and maps blanks onto nil, matching the
// blank-field-becomes-null column semantics.
func TrimOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParseDateOrNil parses a YYYY-MM-DD form value, mapping blanks and garbage
// onto nil.
func ParseDateOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// Today returns the current date truncated to midnight UTC, the lower bound
// for upcoming-event queries.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

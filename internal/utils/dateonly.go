package utils

import (
	"fmt"
	"time"
)

// DateOnlyLayout is the wire format for calendar dates.
const DateOnlyLayout = "2006-01-02"

// ParseDateOnly parses "YYYY-MM-DD" as UTC midnight. Parsing in UTC avoids the
// timezone shifting that plagues date-only values.
func ParseDateOnly(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateOnlyLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDateOnly formats t as "YYYY-MM-DD" in UTC.
func FormatDateOnly(t time.Time) string {
	return t.UTC().Format(DateOnlyLayout)
}

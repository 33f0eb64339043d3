package utils

import (
	"fmt"
	"time"

	"github.com/yukikurage/pto-approval-api/internal/constants"
)

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// NormalizeDate truncates t to its UTC calendar date
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in the wire format
func FormatDate(t time.Time) string {
	return t.UTC().Format(constants.DateLayout)
}

// pkg/converter/dates.go
package converter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyDate is returned when a date value is blank
var ErrEmptyDate = errors.New("empty date")

// dateLayouts are tried in order. LinkedIn exports use "02 Jan 2006";
// the rest cover stored timestamps and hand-edited files.
var dateLayouts = []string{
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
}

// DetectTimeFormat returns the first layout that parses value, or "" if none does
func DetectTimeFormat(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return layout
		}
	}
	return ""
}

// ParseDate parses a connection date in any of the supported layouts.
// Values without a zone are interpreted as UTC.
func ParseDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, ErrEmptyDate
	}

	layout := DetectTimeFormat(cleaned)
	if layout == "" {
		return time.Time{}, fmt.Errorf("cannot parse date from '%s'", cleaned)
	}
	return time.Parse(layout, cleaned)
}

// MonthKey returns the ISO "YYYY-MM" bucket of a date string
func MonthKey(value string) (string, bool) {
	t, err := ParseDate(value)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01"), true
}

// Year returns the calendar year of a date string
func Year(value string) (int, bool) {
	t, err := ParseDate(value)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// MonthLabel renders a "YYYY-MM" key as "Jan 2006". Unknown keys are returned as-is.
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// FormatDisplayDate renders a connection date as "Jan 2, 2006", falling back
// to the raw value when it cannot be parsed.
func FormatDisplayDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}

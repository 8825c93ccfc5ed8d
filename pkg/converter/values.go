// pkg/converter/values.go
package converter

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ToNullString converts an optional string into a value a SQL driver accepts
func ToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: trimmed, Valid: true}
}

// ToNullFloat converts an optional float into a value a SQL driver accepts
func ToNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// FromNullString returns nil for NULL or blank values
func FromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	trimmed := strings.TrimSpace(ns.String)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// FromNullFloat returns nil for NULL values
func FromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// FromNullTime parses a timestamp that a driver returned as text.
// Drivers differ: pgx yields time.Time (scanned to RFC3339Nano), SQLite
// yields whatever was stored.
func FromNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(ns.String)); err == nil {
		return &t
	}
	t, err := ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// ParseCoordinate parses a latitude or longitude and checks its range.
// limit is 90 for latitudes and 180 for longitudes.
func ParseCoordinate(value string, limit float64) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, errors.New("empty string")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert '%s' to float: %w", cleaned, err)
	}
	if math.IsNaN(f) || math.Abs(f) > limit {
		return 0, fmt.Errorf("coordinate %v out of range ±%v", f, limit)
	}
	return f, nil
}

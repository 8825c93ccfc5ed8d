// pkg/model/row.go
package model

import "strings"

// RawRow is a parsed CSV row before normalization: arbitrary column names
// mapped to string values. Duplicate column names are kept; lookups return
// the first occurrence.
type RawRow struct {
	Line    int // 1-based line number in the source, 0 when unknown
	Columns []string
	Values  []string
}

// Get returns the value of the first column with the given name.
func (r RawRow) Get(column string) (string, bool) {
	for i, c := range r.Columns {
		if c == column {
			if i < len(r.Values) {
				return r.Values[i], true
			}
			return "", true
		}
	}
	return "", false
}

// IsBlank reports whether every value is empty or whitespace.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Map returns the row as a column->value map, first occurrence winning.
func (r RawRow) Map() map[string]string {
	out := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		if _, seen := out[c]; seen {
			continue
		}
		if i < len(r.Values) {
			out[c] = r.Values[i]
		} else {
			out[c] = ""
		}
	}
	return out
}

// pkg/mapper/mapper.go
package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/David-Botos/contact-chronicle/pkg/converter"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

var (
	// ErrUnknownField is returned when a mapping names a field that is not canonical
	ErrUnknownField = errors.New("unknown canonical field")
	// ErrUnknownColumn is returned when a mapping names a column the source does not have
	ErrUnknownColumn = errors.New("unknown source column")
)

// Entry is one canonical field and the source column feeding it
type Entry struct {
	Field  model.Field
	Column string // empty when unmapped
}

// Mapping associates canonical fields with source column names. It is
// advisory until committed: Set overrides any suggested entry.
type Mapping struct {
	columns []string
	fields  map[model.Field]string
}

// NewMapping returns an empty mapping over the discovered columns
func NewMapping(columns []string) *Mapping {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Mapping{
		columns: cols,
		fields:  make(map[model.Field]string),
	}
}

// Suggest builds a mapping where each canonical field takes the first
// column that contains it, or is contained by it, ignoring case.
func Suggest(columns []string) *Mapping {
	m := NewMapping(columns)
	for _, field := range model.CanonicalFields {
		name := strings.ToLower(field.Name)
		for _, column := range columns {
			col := strings.ToLower(strings.TrimSpace(column))
			if col == "" {
				continue
			}
			if strings.Contains(col, name) || strings.Contains(name, col) {
				m.fields[field] = column
				break
			}
		}
	}
	return m
}

// Columns returns the source columns the mapping was built over
func (m *Mapping) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// Column returns the source column for a field
func (m *Mapping) Column(f model.Field) (string, bool) {
	col, ok := m.fields[f]
	return col, ok
}

// Set maps a canonical field to a column. An empty column unmaps the field.
func (m *Mapping) Set(f model.Field, column string) error {
	if !isCanonical(f) {
		return fmt.Errorf("%w: %s", ErrUnknownField, f.Name)
	}
	if column == "" {
		delete(m.fields, f)
		return nil
	}
	if !m.hasColumn(column) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	m.fields[f] = column
	return nil
}

// SetByName is Set with the field given by display name or storage key
func (m *Mapping) SetByName(field, column string) error {
	f, ok := model.LookupField(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return m.Set(f, column)
}

// Entries lists every canonical field in mapping order
func (m *Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(model.CanonicalFields))
	for _, f := range model.CanonicalFields {
		entries = append(entries, Entry{Field: f, Column: m.fields[f]})
	}
	return entries
}

// Missing returns the required fields that are not mapped
func (m *Mapping) Missing() []model.Field {
	var missing []model.Field
	for _, f := range model.RequiredFields {
		if _, ok := m.fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Apply builds a canonical record from a raw row. Values are trimmed and
// blanks become nil; no other coercion happens. Location columns present
// in the source (from a previously enriched export) are carried over.
func (m *Mapping) Apply(row model.RawRow) model.Connection {
	var c model.Connection
	for f, column := range m.fields {
		if v, ok := row.Get(column); ok {
			c.SetValue(f, v)
		}
	}
	applyGeoColumns(&c, row)
	return c
}

// MarshalJSON renders the mapping as {"First Name": "column", ...}
func (m *Mapping) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(m.fields))
	for f, column := range m.fields {
		out[f.Name] = column
	}
	return json.Marshal(out)
}

func (m *Mapping) hasColumn(column string) bool {
	for _, c := range m.columns {
		if c == column {
			return true
		}
	}
	return false
}

func isCanonical(f model.Field) bool {
	for _, c := range model.CanonicalFields {
		if c == f {
			return true
		}
	}
	return false
}

var (
	locationColumns  = []string{"location", "city"}
	latitudeColumns  = []string{"latitude", "lat"}
	longitudeColumns = []string{"longitude", "lng", "lon"}
)

func applyGeoColumns(c *model.Connection, row model.RawRow) {
	if v, ok := lookupFold(row, locationColumns); ok {
		c.Location = model.StringPtr(v)
	}
	if v, ok := lookupFold(row, latitudeColumns); ok {
		if lat, err := converter.ParseCoordinate(v, 90); err == nil {
			c.Latitude = model.Float64Ptr(lat)
		}
	}
	if v, ok := lookupFold(row, longitudeColumns); ok {
		if lng, err := converter.ParseCoordinate(v, 180); err == nil {
			c.Longitude = model.Float64Ptr(lng)
		}
	}
}

func lookupFold(row model.RawRow, names []string) (string, bool) {
	for i, column := range row.Columns {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(column), name) && i < len(row.Values) {
				return row.Values[i], true
			}
		}
	}
	return "", false
}

// pkg/model/connection.go
package model

import (
	"strings"
	"time"
)

// Connection is the canonical record for one LinkedIn connection.
// All fields with the exception of the names are optional.
type Connection struct {
	ID           int64      `json:"id,omitempty"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	URL          *string    `json:"url,omitempty"`
	EmailAddress *string    `json:"email_address,omitempty"`
	Company      *string    `json:"company,omitempty"`
	Position     *string    `json:"position,omitempty"`
	ConnectedOn  *string    `json:"connected_on,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	ImportBatch  string     `json:"import_batch,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Admissible reports whether the record satisfies the admission invariant:
// both names are non-empty after trimming.
func (c Connection) Admissible() bool {
	return strings.TrimSpace(c.FirstName) != "" && strings.TrimSpace(c.LastName) != ""
}

// FullName joins first and last name.
func (c Connection) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// HasLocation reports whether location name and both coordinates are set.
func (c Connection) HasLocation() bool {
	return c.Location != nil && c.Latitude != nil && c.Longitude != nil
}

// HasCoordinates reports whether the record can be placed on a map.
func (c Connection) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Value returns the string value of a text field, "" when absent.
func (c Connection) Value(f Field) string {
	switch f {
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldURL:
		return deref(c.URL)
	case FieldEmailAddress:
		return deref(c.EmailAddress)
	case FieldCompany:
		return deref(c.Company)
	case FieldPosition:
		return deref(c.Position)
	case FieldConnectedOn:
		return deref(c.ConnectedOn)
	case FieldLocation:
		return deref(c.Location)
	default:
		return ""
	}
}

// SetValue assigns a text field. Empty values clear optional fields.
func (c *Connection) SetValue(f Field, value string) {
	value = strings.TrimSpace(value)
	switch f {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldURL:
		c.URL = StringPtr(value)
	case FieldEmailAddress:
		c.EmailAddress = StringPtr(value)
	case FieldCompany:
		c.Company = StringPtr(value)
	case FieldPosition:
		c.Position = StringPtr(value)
	case FieldConnectedOn:
		c.ConnectedOn = StringPtr(value)
	case FieldLocation:
		c.Location = StringPtr(value)
	}
}

// StringPtr returns nil for blank strings, a pointer to the trimmed value otherwise.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

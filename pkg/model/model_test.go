package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Field
		ok    bool
	}{
		{"display name", "First Name", FieldFirstName, true},
		{"storage key", "email_address", FieldEmailAddress, true},
		{"case insensitive", "connected on", FieldConnectedOn, true},
		{"location is a text field", "Location", FieldLocation, true},
		{"padded", "  company ", FieldCompany, true},
		{"unknown", "Phone", Field{}, false},
		{"empty", "", Field{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupField(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldIsRequired(t *testing.T) {
	assert.True(t, FieldFirstName.IsRequired())
	assert.True(t, FieldLastName.IsRequired())
	assert.False(t, FieldCompany.IsRequired())
}

func TestConnectionAdmissible(t *testing.T) {
	assert.True(t, Connection{FirstName: "Jo", LastName: "Lee"}.Admissible())
	assert.False(t, Connection{FirstName: "", LastName: "Kim"}.Admissible())
	assert.False(t, Connection{FirstName: "Ann", LastName: "   "}.Admissible())
}

func TestConnectionSetValue(t *testing.T) {
	var c Connection
	c.SetValue(FieldFirstName, "  Jo ")
	c.SetValue(FieldCompany, " Google ")
	c.SetValue(FieldPosition, "   ")

	assert.Equal(t, "Jo", c.FirstName)
	require.NotNil(t, c.Company)
	assert.Equal(t, "Google", *c.Company)
	assert.Nil(t, c.Position, "blank optional values stay nil")
	assert.Equal(t, "Google", c.Value(FieldCompany))
	assert.Equal(t, "", c.Value(FieldPosition))
}

func TestConnectionLocationState(t *testing.T) {
	c := Connection{FirstName: "Jo", LastName: "Lee"}
	assert.False(t, c.HasLocation())
	assert.False(t, c.HasCoordinates())

	c.Latitude, c.Longitude = Float64Ptr(1), Float64Ptr(2)
	assert.True(t, c.HasCoordinates())
	assert.False(t, c.HasLocation(), "location name still missing")

	c.Location = StringPtr("Somewhere")
	assert.True(t, c.HasLocation())
	assert.Equal(t, "Jo Lee", c.FullName())
}

func TestRawRowGetFirstOccurrenceWins(t *testing.T) {
	row := RawRow{
		Columns: []string{"Company", "Company", "Short"},
		Values:  []string{"first", "second"},
	}

	v, ok := row.Get("Company")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = row.Get("Short")
	assert.True(t, ok, "column exists even without a value")
	assert.Equal(t, "", v)

	_, ok = row.Get("Missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"Company": "first", "Short": ""}, row.Map())
}

func TestRawRowIsBlank(t *testing.T) {
	assert.True(t, RawRow{Values: []string{"", "  ", "\t"}}.IsBlank())
	assert.False(t, RawRow{Values: []string{"", "x"}}.IsBlank())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Line: 4, Kind: DiagnosticBlankRow, Dropped: true, Reason: "every value is empty"}
	assert.Equal(t, "line 4: blank_row (dropped): every value is empty", d.String())

	d = Diagnostic{Kind: DiagnosticParseError, Reason: "too few fields"}
	assert.Equal(t, "parse_error (kept): too few fields", d.String())
}

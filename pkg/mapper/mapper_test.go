package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

var linkedInHeader = []string{"First Name", "Last Name", "URL", "Email Address", "Company", "Position", "Connected On"}

func TestSuggestLinkedInHeader(t *testing.T) {
	m := Suggest(linkedInHeader)
	for i, f := range model.CanonicalFields {
		column, ok := m.Column(f)
		require.True(t, ok, f.Name)
		assert.Equal(t, linkedInHeader[i], column)
	}
	assert.Empty(t, m.Missing())

	columns := m.Columns()
	assert.Equal(t, linkedInHeader, columns)
	columns[0] = "changed"
	assert.Equal(t, "First Name", m.Columns()[0], "callers get a copy")
}

func TestSuggestSubstringBothWays(t *testing.T) {
	m := Suggest([]string{"", "Contact First Name", "last", "Current Company", "Title"})

	column, ok := m.Column(model.FieldFirstName)
	require.True(t, ok)
	assert.Equal(t, "Contact First Name", column, "column contains the field name")

	column, ok = m.Column(model.FieldLastName)
	require.True(t, ok)
	assert.Equal(t, "last", column, "field name contains the column")

	column, ok = m.Column(model.FieldCompany)
	require.True(t, ok)
	assert.Equal(t, "Current Company", column)

	_, ok = m.Column(model.FieldPosition)
	assert.False(t, ok)
}

func TestSuggestFirstColumnWins(t *testing.T) {
	m := Suggest([]string{"Company Name", "Company"})
	column, _ := m.Column(model.FieldCompany)
	assert.Equal(t, "Company Name", column)
}

func TestSuggestIgnoresEmptyColumns(t *testing.T) {
	m := Suggest([]string{"", "  "})
	assert.Empty(t, m.fields)
	assert.Equal(t, model.RequiredFields, m.Missing())
}

func TestSetOverrides(t *testing.T) {
	m := Suggest([]string{"First Name", "Last Name", "Employer", "Company"})

	require.NoError(t, m.Set(model.FieldCompany, "Employer"))
	column, _ := m.Column(model.FieldCompany)
	assert.Equal(t, "Employer", column)

	require.NoError(t, m.SetByName("company", ""))
	_, ok := m.Column(model.FieldCompany)
	assert.False(t, ok, "empty column unmaps")

	assert.ErrorIs(t, m.Set(model.FieldCompany, "Nope"), ErrUnknownColumn)
	assert.ErrorIs(t, m.Set(model.FieldLocation, "Company"), ErrUnknownField)
	assert.ErrorIs(t, m.SetByName("Phone", "Company"), ErrUnknownField)
}

func TestMissingRequired(t *testing.T) {
	m := Suggest([]string{"Last Name", "Company"})
	assert.Equal(t, []model.Field{model.FieldFirstName}, m.Missing())
}

func TestApply(t *testing.T) {
	m := Suggest([]string{"First Name", "Last Name", "Company", "Position", "City", "Lat", "Lng"})
	row := model.RawRow{
		Line:    2,
		Columns: []string{"First Name", "Last Name", "Company", "Position", "City", "Lat", "Lng"},
		Values:  []string{" Jo ", "Lee", "Google", "  ", "Mountain View", "37.38", "bad"},
	}

	c := m.Apply(row)
	assert.Equal(t, "Jo", c.FirstName)
	assert.Equal(t, "Lee", c.LastName)
	require.NotNil(t, c.Company)
	assert.Equal(t, "Google", *c.Company)
	assert.Nil(t, c.Position)
	assert.Nil(t, c.URL, "unmapped fields stay nil")
	require.NotNil(t, c.Location)
	assert.Equal(t, "Mountain View", *c.Location)
	require.NotNil(t, c.Latitude)
	assert.Equal(t, 37.38, *c.Latitude)
	assert.Nil(t, c.Longitude, "unparsable coordinates are ignored")
}

func TestMarshalJSON(t *testing.T) {
	m := Suggest([]string{"First Name", "Last Name"})
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"First Name":"First Name","Last Name":"Last Name"}`, string(data))
}

func TestEntries(t *testing.T) {
	m := Suggest([]string{"First Name"})
	entries := m.Entries()
	require.Len(t, entries, len(model.CanonicalFields))
	assert.Equal(t, Entry{Field: model.FieldFirstName, Column: "First Name"}, entries[0])
	assert.Equal(t, Entry{Field: model.FieldLastName}, entries[1])
}

func TestPreview(t *testing.T) {
	columns := []string{"First Name", "Last Name", "Company"}
	m := Suggest(columns)
	rows := []model.RawRow{
		{Columns: columns, Values: []string{"Jo", "Lee", "Google"}},
		{Columns: columns, Values: []string{"Ann", "Roe", ""}},
		{Columns: columns, Values: []string{"Sam", "Poe", "Acme"}},
	}

	preview := Preview(rows, m, 2)
	require.Len(t, preview, 2)
	assert.Equal(t, "Google", preview[0]["Company"])
	assert.Equal(t, "N/A", preview[1]["Company"])
	assert.Equal(t, "--", preview[0]["Position"])

	assert.Len(t, Preview(rows, m, 10), 3)
	assert.Empty(t, Preview(rows, m, -1))
}

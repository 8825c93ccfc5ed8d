package converter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"15 Mar 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"5 Mar 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2023-11-02", time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)},
		{"March 7, 2022", time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"2021-06", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
		{" 01/02/2020 ", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDateErrors(t *testing.T) {
	_, err := ParseDate("   ")
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, err = ParseDate("sometime last year")
	assert.Error(t, err)
}

func TestMonthKeyAndYear(t *testing.T) {
	key, ok := MonthKey("15 Mar 2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-03", key)

	_, ok = MonthKey("not a date")
	assert.False(t, ok)

	year, ok := Year("2019-12-31")
	assert.True(t, ok)
	assert.Equal(t, 2019, year)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan 2024", MonthLabel("2024-01"))
	assert.Equal(t, "garbage", MonthLabel("garbage"))
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "Mar 15, 2024", FormatDisplayDate("15 Mar 2024"))
	assert.Equal(t, "unknown", FormatDisplayDate("unknown"))
}

func TestNullConversions(t *testing.T) {
	s := "  Acme "
	assert.Equal(t, sql.NullString{String: "Acme", Valid: true}, ToNullString(&s))
	blank := "  "
	assert.False(t, ToNullString(&blank).Valid)
	assert.False(t, ToNullString(nil).Valid)

	f := 47.6
	assert.Equal(t, sql.NullFloat64{Float64: 47.6, Valid: true}, ToNullFloat(&f))
	assert.False(t, ToNullFloat(nil).Valid)

	assert.Nil(t, FromNullString(sql.NullString{}))
	assert.Nil(t, FromNullString(sql.NullString{String: " ", Valid: true}))
	require.NotNil(t, FromNullString(sql.NullString{String: "x", Valid: true}))

	assert.Nil(t, FromNullFloat(sql.NullFloat64{}))
	got := FromNullFloat(sql.NullFloat64{Float64: -3.5, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, -3.5, *got)
}

func TestFromNullTime(t *testing.T) {
	ts := FromNullTime(sql.NullString{String: "2024-05-01T10:11:12.000000123Z", Valid: true})
	require.NotNil(t, ts)
	assert.Equal(t, 123, ts.Nanosecond())

	ts = FromNullTime(sql.NullString{String: "2024-05-01 10:11:12", Valid: true})
	require.NotNil(t, ts)
	assert.Equal(t, 10, ts.Hour())

	assert.Nil(t, FromNullTime(sql.NullString{}))
	assert.Nil(t, FromNullTime(sql.NullString{String: "never", Valid: true}))
}

func TestParseCoordinate(t *testing.T) {
	v, err := ParseCoordinate(" 37.77 ", 90)
	require.NoError(t, err)
	assert.Equal(t, 37.77, v)

	_, err = ParseCoordinate("", 90)
	assert.Error(t, err)
	_, err = ParseCoordinate("north", 90)
	assert.Error(t, err)
	_, err = ParseCoordinate("91", 90)
	assert.Error(t, err)
	_, err = ParseCoordinate("-179.9", 180)
	assert.NoError(t, err)
}

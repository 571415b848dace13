package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, time.Thursday, d.Weekday())

	for _, bad := range []string{"", "2024-02-30", "29/02/2024", "2024-2-3", "2024-02-29T10:00:00Z", "0001-01-01"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateOf_DayBoundary(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 23:30 UTC on Jan 14 is already Jan 15 in Paris.
	late := time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15", DateOf(late, paris).String())
	assert.Equal(t, "2024-01-14", DateOf(late, time.UTC).String())

	// 23:30 Paris time stays on the local day even though UTC is 22:30.
	evening := time.Date(2024, 1, 14, 23, 30, 0, 0, paris)
	assert.Equal(t, "2024-01-14", DateOf(evening, paris).String())

	// New York is behind UTC: 02:00 UTC on Jan 15 is still Jan 14 there.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", DateOf(time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC), ny).String())
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2024-03-30")

	// Crossing the Paris DST change does not lose or gain a day.
	assert.Equal(t, "2024-04-02", d.AddDays(3).String())
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))
	assert.Equal(t, -3, d.AddDays(3).DaysUntil(d))

	// Open-ended periods far in the future are still counted exactly.
	assert.Equal(t, 2913160, MustParseDate("2024-01-14").DaysUntil(MustParseDate("9999-12-31")))
	assert.Equal(t, 3652057, MustParseDate("0001-01-02").DaysUntil(MustParseDate("9999-12-31")))

	assert.Equal(t, "2024-03-02", MustParseDate("2024-01-31").AddMonths(1).String())
	assert.Equal(t, "2026-01-01", MustParseDate("2024-01-01").AddMonths(24).String())

	start, end := MustParseDate("2024-01-08"), MustParseDate("2024-01-14")
	assert.True(t, start.Within(start, end))
	assert.True(t, end.Within(start, end))
	assert.False(t, end.AddDays(1).Within(start, end))
	assert.Equal(t, -1, start.Compare(end))
}

func TestDate_TextMarshalling(t *testing.T) {
	type payload struct {
		Day Date `json:"day" yaml:"day"`
	}

	b, err := json.Marshal(payload{Day: MustParseDate("2024-01-15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-01-15"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2024-12-25"}`), &p))
	assert.Equal(t, "2024-12-25", p.Day.String())

	require.NoError(t, yaml.Unmarshal([]byte("day: 2025-05-01\n"), &p))
	assert.Equal(t, "2025-05-01", p.Day.String())

	assert.Error(t, json.Unmarshal([]byte(`{"day":"tomorrow"}`), &p))
}

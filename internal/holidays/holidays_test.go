package holidays

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/CoParent/internal/models"
)

const france = `
name: France
holidays:
  - name: Christmas
    date: 2024-12-25
  - name: Toussaint school holidays
    start: 2024-10-19
    end: 2024-11-03
  - name: Armistice
    start: 2024-11-11
`

func TestLoad(t *testing.T) {
	cal, err := Load(strings.NewReader(france))
	require.NoError(t, err)
	assert.Equal(t, "France", cal.Name)
	require.Len(t, cal.Holidays, 3)

	assert.Equal(t, "2024-12-25", cal.Holidays[0].Start.String())
	assert.Equal(t, "2024-12-25", cal.Holidays[0].End.String())
	assert.Equal(t, "2024-11-03", cal.Holidays[1].End.String())
	assert.Equal(t, "2024-11-11", cal.Holidays[2].End.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"no name":      "holidays:\n  - date: 2024-01-01\n",
		"no date":      "holidays:\n  - name: X\n",
		"inverted":     "holidays:\n  - name: X\n    start: 2024-02-01\n    end: 2024-01-01\n",
		"both forms":   "holidays:\n  - name: X\n    date: 2024-01-01\n    start: 2024-01-01\n",
		"bad date":     "holidays:\n  - name: X\n    date: 01/02/2024\n",
		"not yaml map": "- just\n- a list\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestToEvents(t *testing.T) {
	cal, err := Load(strings.NewReader(france))
	require.NoError(t, err)

	events := cal.ToEvents(7)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.NoError(t, e.Validate())
		assert.Equal(t, models.TagPublicHoliday, e.Kind.Tag())
		assert.Equal(t, "France", e.Description)
	}
	assert.Equal(t, "Christmas", events[0].Title)

	again := cal.ToEvents(7)
	assert.Equal(t, events[0].ID, again[0].ID)
	assert.NotEqual(t, events[0].ID, cal.ToEvents(8)[0].ID)
}

func TestMissing(t *testing.T) {
	cal, err := Load(strings.NewReader(france))
	require.NoError(t, err)
	events := cal.ToEvents(1)

	assert.Len(t, Missing(nil, events), 3)
	assert.Empty(t, Missing(events, events))

	// A holiday entered by hand with the same title and range is not duplicated.
	manual := models.CalendarEvent{
		ID:    "manual",
		Kind:  models.PublicHoliday{},
		Title: "Christmas",
		Start: models.MustParseDate("2024-12-25"),
		End:   models.MustParseDate("2024-12-25"),
	}
	rest := Missing([]models.CalendarEvent{manual}, events)
	require.Len(t, rest, 2)
	assert.Equal(t, "Toussaint school holidays", rest[0].Title)

	// Duplicates inside the import itself collapse.
	assert.Len(t, Missing(nil, append(events, events[0])), 3)
}

package recap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/CoParent/internal/models"
)

var (
	parentA = models.Parent{Ref: "p1", Role: models.RoleParentA}
	parentB = models.Parent{Ref: "p2", Role: models.RoleParentB}
	dir     = NewDirectory(parentA, parentB)
)

func d(s string) models.Date { return models.MustParseDate(s) }

func custody(id, start, end string, ref models.ParentRef) models.CalendarEvent {
	return models.CalendarEvent{
		ID:    id,
		Kind:  models.CustodyPrimary{Parent: ref},
		Start: d(start),
		End:   d(end),
	}
}

// alternatingJanuary is the alternating-week schedule for January 2024
// starting with Parent A.
func alternatingJanuary() []models.CalendarEvent {
	return []models.CalendarEvent{
		custody("w1", "2024-01-01", "2024-01-07", "p1"),
		custody("w2", "2024-01-08", "2024-01-14", "p2"),
		custody("w3", "2024-01-15", "2024-01-21", "p1"),
		custody("w4", "2024-01-22", "2024-01-28", "p2"),
		custody("w5", "2024-01-29", "2024-01-31", "p1"),
	}
}

func TestDerive_LastDayOfPeriod(t *testing.T) {
	res := Derive(d("2024-01-14"), alternatingJanuary(), dir)

	assert.Equal(t, "Parent B", res.CustodianLabel())
	assert.Equal(t, 1, res.DaysRemaining.OrEmpty())
	assert.Equal(t, "2024-01-15", res.NextTransitionLabel())
	assert.Equal(t, "Parent A", res.NextParentLabel())
	assert.Equal(t, "w2", res.CurrentEventID.OrEmpty())
	assert.True(t, res.TransitionIsTomorrow())
}

func TestDerive_DaysRemaining(t *testing.T) {
	events := alternatingJanuary()

	tests := []struct {
		today string
		want  int
	}{
		{"2024-01-01", 7},
		{"2024-01-04", 4},
		{"2024-01-07", 1},
		{"2024-01-08", 7},
		{"2024-01-30", 2},
		{"2024-01-31", 1},
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			res := Derive(d(tt.today), events, dir)
			n, ok := res.DaysRemaining.Get()
			require.True(t, ok)
			assert.Equal(t, tt.want, n)
		})
	}

	// Every custody event: the last day always has exactly one day left.
	for _, e := range events {
		res := Derive(e.End, events, dir)
		assert.Equal(t, "1", res.DaysRemainingLabel(), e.ID)
	}
}

func TestDerive_NoCustodyToday(t *testing.T) {
	res := Derive(d("2024-02-10"), alternatingJanuary(), dir)

	assert.Equal(t, Unknown, res.CustodianLabel())
	assert.Equal(t, Unknown, res.DaysRemainingLabel())
	assert.Equal(t, Unknown, res.NextTransitionLabel())
	assert.Equal(t, Unknown, res.NextParentLabel())
	assert.True(t, res.CurrentEventID.IsAbsent())
	assert.True(t, res.Unknown())
	assert.False(t, res.TransitionIsTomorrow())

	empty := Derive(d("2024-02-10"), nil, nil)
	assert.Equal(t, Unknown, empty.CustodianLabel())
	assert.Empty(t, empty.NotableThisWeek)
}

func TestDerive_EndOfScheduleHasNoNextParent(t *testing.T) {
	res := Derive(d("2024-01-30"), alternatingJanuary(), dir)

	assert.Equal(t, "Parent A", res.CustodianLabel())
	assert.Equal(t, "2024-02-01", res.NextTransitionLabel())
	assert.Equal(t, Unknown, res.NextParentLabel())
}

func TestDerive_GapMovesTransition(t *testing.T) {
	events := []models.CalendarEvent{
		custody("a", "2024-03-01", "2024-03-07", "p1"),
		custody("b", "2024-03-12", "2024-03-18", "p2"),
		custody("c", "2024-03-19", "2024-03-25", "p1"),
	}
	res := Derive(d("2024-03-05"), events, dir)

	assert.Equal(t, 3, res.DaysRemaining.OrEmpty())
	assert.Equal(t, "2024-03-12", res.NextTransitionLabel())
	assert.Equal(t, "Parent B", res.NextParentLabel())
}

func TestDerive_OverlapTieBreak(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	older := custody("old", "2024-01-08", "2024-01-14", "p2")
	older.CreatedAt = created
	newer := custody("new", "2024-01-08", "2024-01-14", "p1")
	newer.CreatedAt = created.Add(time.Hour)
	earlier := custody("earlier", "2024-01-05", "2024-01-10", "p2")

	events := []models.CalendarEvent{older, newer, earlier}

	// Smallest start wins first.
	res := Derive(d("2024-01-09"), events, dir)
	assert.Equal(t, "earlier", res.CurrentEventID.OrEmpty())

	// Same start: the most recently created wins.
	res = Derive(d("2024-01-12"), events, dir)
	assert.Equal(t, "new", res.CurrentEventID.OrEmpty())
	assert.Equal(t, "Parent A", res.CustodianLabel())

	// Input order never changes the answer.
	reversed := []models.CalendarEvent{earlier, newer, older}
	for i := 0; i < 5; i++ {
		assert.Equal(t, res, Derive(d("2024-01-12"), reversed, dir))
		assert.Equal(t, res, Derive(d("2024-01-12"), events, dir))
	}

	// Identical start and creation time fall back to the id.
	twinA := custody("twin-a", "2024-02-01", "2024-02-07", "p1")
	twinB := custody("twin-b", "2024-02-01", "2024-02-07", "p2")
	res = Derive(d("2024-02-03"), []models.CalendarEvent{twinB, twinA}, dir)
	assert.Equal(t, "twin-a", res.CurrentEventID.OrEmpty())
}

func TestDerive_Idempotent(t *testing.T) {
	events := append(alternatingJanuary(),
		models.CalendarEvent{ID: "h", Kind: models.PublicHoliday{}, Title: "New Year", Start: d("2024-01-01"), End: d("2024-01-01")},
	)
	first := Derive(d("2024-01-03"), events, dir)
	second := Derive(d("2024-01-03"), events, dir)
	assert.Equal(t, first, second)
}

func TestDerive_MalformedEventsAreIgnored(t *testing.T) {
	events := []models.CalendarEvent{
		{ID: "nil-kind", Start: d("2024-01-01"), End: d("2024-01-31")},
		{ID: "inverted", Kind: models.CustodyPrimary{Parent: "p2"}, Start: d("2024-01-20"), End: d("2024-01-02")},
		custody("ok", "2024-01-08", "2024-01-14", "p1"),
		custody("ghost", "2024-01-15", "2024-01-21", "someone-else"),
	}

	res := Derive(d("2024-01-10"), events, dir)
	assert.Equal(t, "ok", res.CurrentEventID.OrEmpty())
	assert.Equal(t, "Parent A", res.CustodianLabel())
	assert.Equal(t, "2024-01-15", res.NextTransitionLabel())
	// Unresolvable parent references degrade to unknown.
	assert.Equal(t, Unknown, res.NextParentLabel())
}

func TestDerive_OpenEndedPeriod(t *testing.T) {
	events := append(alternatingJanuary(), custody("forever", "0001-01-02", "9999-12-31", "p2"))

	res := Derive(d("2024-01-14"), events, dir)
	assert.Equal(t, "forever", res.CurrentEventID.OrEmpty())
	assert.Equal(t, "Parent B", res.CustodianLabel())
	assert.Equal(t, 2913161, res.DaysRemaining.OrEmpty())
}

func TestHandoverChanged(t *testing.T) {
	events := alternatingJanuary()
	today := d("2024-01-14")
	before := Derive(today, events, dir)

	assert.False(t, HandoverChanged(before, Derive(today, events, dir)))
	assert.False(t, HandoverChanged(before, Derive(today.AddDays(1), events, dir)))

	var withoutNextWeek []models.CalendarEvent
	for _, e := range events {
		if !e.Start.Equal(d("2024-01-15")) {
			withoutNextWeek = append(withoutNextWeek, e)
		}
	}
	assert.True(t, HandoverChanged(before, Derive(today, withoutNextWeek, dir)))
}

func TestDerive_VacationCountsAsCustody(t *testing.T) {
	events := append(alternatingJanuary(), models.CalendarEvent{
		ID:    "ski",
		Kind:  models.CustodyVacation{Parent: "p2"},
		Start: d("2024-01-06"),
		End:   d("2024-01-06"),
		Title: "Ski trip",
	})
	res := Derive(d("2024-01-06"), events, dir)
	// The regular week starts earlier, so it still wins the tie-break.
	assert.Equal(t, "w1", res.CurrentEventID.OrEmpty())

	res = Derive(d("2024-01-05"), events, dir)
	assert.Equal(t, "2024-01-08", res.NextTransitionLabel())
	assert.Equal(t, "Parent B", res.NextParentLabel())
}

func TestDerive_NotableThisWeek(t *testing.T) {
	events := append(alternatingJanuary(),
		models.CalendarEvent{ID: "play", Kind: models.SpecialEvent{Title: "School play"}, Start: d("2024-01-10"), End: d("2024-01-10")},
		models.CalendarEvent{ID: "camp", Kind: models.CustodyVacation{Parent: "p1"}, Title: "Camp", Start: d("2024-01-13"), End: d("2024-01-20")},
		models.CalendarEvent{ID: "hol", Kind: models.PublicHoliday{}, Start: d("2024-01-08"), End: d("2024-01-08")},
		models.CalendarEvent{ID: "vac", Kind: models.CustodyVacation{Parent: "p2"}, Start: d("2024-01-01"), End: d("2024-01-08")},
		models.CalendarEvent{ID: "later", Kind: models.SpecialEvent{Title: "Dentist"}, Start: d("2024-01-15"), End: d("2024-01-15")},
		models.CalendarEvent{ID: "before", Kind: models.PublicHoliday{}, Title: "Epiphany", Start: d("2024-01-06"), End: d("2024-01-07")},
	)

	res := Derive(d("2024-01-11"), events, dir)
	assert.Equal(t, "2024-01-08", res.WeekStart.String())
	assert.Equal(t, "2024-01-14", res.WeekEnd.String())

	require.Len(t, res.NotableThisWeek, 4)
	got := make([]string, len(res.NotableThisWeek))
	for i, n := range res.NotableThisWeek {
		got[i] = n.Label + " | " + n.Range()
	}
	assert.Equal(t, []string{
		"Vacation (Parent B) | 2024-01-01 to 2024-01-08",
		"Public holiday | 2024-01-08",
		"School play | 2024-01-10",
		"Camp (vacation, Parent A) | 2024-01-13 to 2024-01-20",
	}, got)
}

func TestDerive_SundayWeekStart(t *testing.T) {
	res := Derive(d("2024-01-11"), nil, dir, WithWeekStart(time.Sunday))
	assert.Equal(t, "2024-01-07", res.WeekStart.String())
	assert.Equal(t, "2024-01-13", res.WeekEnd.String())

	res = Derive(d("2024-01-07"), nil, dir, WithWeekStart(time.Sunday))
	assert.Equal(t, "2024-01-07", res.WeekStart.String())

	res = Derive(d("2024-01-07"), nil, dir)
	assert.Equal(t, "2024-01-01", res.WeekStart.String())
}

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/recap"
)

var dir = recap.NewDirectory(
	models.Parent{Ref: "p1", Role: models.RoleParentA},
	models.Parent{Ref: "p2", Role: models.RoleParentB},
)

func week(id, start, end string, ref models.ParentRef) models.CalendarEvent {
	return models.CalendarEvent{
		ID:    id,
		Kind:  models.CustodyPrimary{Parent: ref},
		Start: models.MustParseDate(start),
		End:   models.MustParseDate(end),
	}
}

func TestRecapMessage(t *testing.T) {
	events := []models.CalendarEvent{
		week("w1", "2024-01-08", "2024-01-14", "p2"),
		week("w2", "2024-01-15", "2024-01-21", "p1"),
		{ID: "play", Kind: models.SpecialEvent{Title: "School play"}, Start: models.MustParseDate("2024-01-10"), End: models.MustParseDate("2024-01-10")},
	}
	res := recap.Derive(models.MustParseDate("2024-01-14"), events, dir)

	msg := RecapMessage(res)
	assert.Contains(t, msg, "# Today, 2024-01-14")
	assert.Contains(t, msg, "Custody: **Parent B**, last day")
	assert.Contains(t, msg, "Next handover: **2024-01-15** to **Parent A**")
	assert.Contains(t, msg, "• 2024-01-10: School play")

	assert.Equal(t, "Handover tomorrow: **Parent A** takes over.", TransitionNotice(res))

	res = recap.Derive(models.MustParseDate("2024-01-09"), events, dir)
	assert.Contains(t, RecapMessage(res), "6 days left")
	assert.Empty(t, TransitionNotice(res))
}

func TestRecapMessage_Unknown(t *testing.T) {
	res := recap.Derive(models.MustParseDate("2024-06-01"), nil, dir)
	msg := RecapMessage(res)
	assert.Contains(t, msg, "Custody: **unknown**")
	assert.Contains(t, msg, "Nothing special.")
	assert.NotContains(t, msg, "Next handover")
}

func TestHandoverUpdate(t *testing.T) {
	events := []models.CalendarEvent{
		week("w1", "2024-01-08", "2024-01-14", "p2"),
		week("w3", "2024-01-22", "2024-01-28", "p1"),
	}
	msg := HandoverUpdate(recap.Derive(models.MustParseDate("2024-01-12"), events, dir))
	assert.Contains(t, msg, "# Schedule updated")
	assert.Contains(t, msg, "Custody today: **Parent B**, 3 days left")
	assert.Contains(t, msg, "Next handover: **2024-01-22** to **Parent A**")

	msg = HandoverUpdate(recap.Derive(models.MustParseDate("2024-06-01"), events, dir))
	assert.Contains(t, msg, "Custody today: **unknown**")
}

func TestPlanPreviewMessage(t *testing.T) {
	p := &planner.Preview{
		Request: custody.Request{
			Pattern:        custody.PatternAlternatingWeek,
			StartDate:      models.MustParseDate("2024-01-01"),
			StartingParent: models.RoleParentA,
			DurationMonths: 1,
		},
		Events:   []models.CalendarEvent{week("a", "2024-01-01", "2024-01-07", "p1"), week("b", "2024-01-08", "2024-01-31", "p2")},
		Overlaps: []models.CalendarEvent{week("old", "2024-01-05", "2024-01-09", "p2")},
	}
	msg := PlanPreviewMessage(p)
	assert.Contains(t, msg, "# Plan: alternating weeks")
	assert.Contains(t, msg, "2 custody periods from 2024-01-01 to 2024-01-31")
	assert.Contains(t, msg, "The cycle repeats every 14 days, until 2024-01-31.")
	assert.Contains(t, msg, "Existing events are kept.")
	assert.Contains(t, msg, "1 existing custody period(s) overlap")

	p.Request.Pattern = custody.PatternCustom
	p.Events = nil
	assert.Contains(t, PlanPreviewMessage(p), "generates no periods")
}

func TestEventList(t *testing.T) {
	events := []models.CalendarEvent{
		week("0123456789abcdef", "2024-01-01", "2024-01-07", "p1"),
		{ID: "h", Kind: models.PublicHoliday{}, Title: "New Year", Start: models.MustParseDate("2024-01-01"), End: models.MustParseDate("2024-01-01")},
		{ID: "v", Kind: models.CustodyVacation{Parent: "p9"}, Start: models.MustParseDate("2024-02-01"), End: models.MustParseDate("2024-02-03")},
	}
	msg := EventList("Events", events, dir)
	assert.Contains(t, msg, "`01234567` 2024-01-01 to 2024-01-07: Custody Parent A")
	assert.Contains(t, msg, "`h` 2024-01-01: New Year")
	assert.Contains(t, msg, "Vacation unknown")

	assert.Contains(t, EventList("Events", nil, dir), "No events.")
}

package format

import (
	"fmt"
	"strings"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/recap"
	"github.com/hray3182/CoParent/internal/rrule"
)

// RecapMessage renders the daily recap.
func RecapMessage(res recap.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Today, %s\n", res.Today)

	if res.Unknown() {
		sb.WriteString("Custody: **unknown** (no custody period covers today)\n")
	} else {
		fmt.Fprintf(&sb, "Custody: **%s**, %s\n", res.CustodianLabel(), daysLeft(res))
		fmt.Fprintf(&sb, "Next handover: **%s** to **%s**\n", res.NextTransitionLabel(), res.NextParentLabel())
	}

	fmt.Fprintf(&sb, "\n**This week** (%s to %s)\n", res.WeekStart, res.WeekEnd)
	if len(res.NotableThisWeek) == 0 {
		sb.WriteString("Nothing special.\n")
	}
	for _, n := range res.NotableThisWeek {
		fmt.Fprintf(&sb, "• %s: %s\n", n.Range(), n.Label)
	}
	return sb.String()
}

// TransitionNotice is appended on the eve of a handover. It returns "" on
// any other day.
func TransitionNotice(res recap.Result) string {
	if !res.TransitionIsTomorrow() {
		return ""
	}
	return fmt.Sprintf("Handover tomorrow: **%s** takes over.", res.NextParentLabel())
}

// HandoverUpdate is pushed when an edit changes today's custodian or the
// next handover.
func HandoverUpdate(res recap.Result) string {
	var sb strings.Builder
	sb.WriteString("# Schedule updated\n")
	if res.Unknown() {
		sb.WriteString("Custody today: **unknown**\n")
	} else {
		fmt.Fprintf(&sb, "Custody today: **%s**, %s\n", res.CustodianLabel(), daysLeft(res))
	}
	fmt.Fprintf(&sb, "Next handover: **%s** to **%s**\n", res.NextTransitionLabel(), res.NextParentLabel())
	return sb.String()
}

func daysLeft(res recap.Result) string {
	n, ok := res.DaysRemaining.Get()
	switch {
	case !ok:
		return "days left unknown"
	case n == 1:
		return "last day"
	}
	return fmt.Sprintf("%d days left", n)
}

// PlanPreviewMessage is the confirmation prompt shown before a batch is written.
func PlanPreviewMessage(p *planner.Preview) string {
	var sb strings.Builder
	req := p.Request
	fmt.Fprintf(&sb, "# Plan: %s\n", custody.Describe(req.Pattern, req.Variant))
	fmt.Fprintf(&sb, "Starts %s with **%s** for %d month(s).\n", req.StartDate, req.StartingParent, req.DurationMonths)

	if len(p.Events) == 0 {
		sb.WriteString("\nA custom plan generates no periods. Add them one by one with /event.\n")
		return sb.String()
	}
	start, end, _ := custody.Span(p.Events)
	fmt.Fprintf(&sb, "%d custody periods from %s to %s.\n", len(p.Events), start, end)
	if rule := custody.CycleRule(req); rule != "" {
		fmt.Fprintf(&sb, "The cycle repeats %s.\n", rrule.HumanReadable(rule))
	}

	sb.WriteString("\nExisting events are kept.")
	if n := len(p.Overlaps); n > 0 {
		fmt.Fprintf(&sb, " _%d existing custody period(s) overlap this plan._", n)
	}
	sb.WriteString("\n")
	return sb.String()
}

// EventLine renders one event for listings.
func EventLine(e models.CalendarEvent, dir recap.Directory) string {
	return fmt.Sprintf("`%s` %s: %s", shortID(e.ID), dateRange(e.Start, e.End), eventLabel(e, dir))
}

// EventList renders events as a numbered listing.
func EventList(title string, events []models.CalendarEvent, dir recap.Directory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title)
	if len(events) == 0 {
		sb.WriteString("No events.\n")
		return sb.String()
	}
	for _, e := range events {
		sb.WriteString(EventLine(e, dir))
		sb.WriteString("\n")
	}
	return sb.String()
}

func eventLabel(e models.CalendarEvent, dir recap.Directory) string {
	who := func(ref models.ParentRef) string {
		if p, ok := dir[ref]; ok {
			return string(p.Role)
		}
		return recap.Unknown
	}
	switch k := e.Kind.(type) {
	case models.CustodyPrimary:
		return "Custody " + who(k.Parent)
	case models.CustodyVacation:
		if e.Title != "" {
			return e.Title + " (vacation, " + who(k.Parent) + ")"
		}
		return "Vacation " + who(k.Parent)
	case models.SpecialEvent, models.PublicHoliday:
		return e.Label()
	}
	return recap.Unknown
}

func dateRange(start, end models.Date) string {
	if start.Equal(end) {
		return start.String()
	}
	return start.String() + " to " + end.String()
}

// shortID keeps listings readable; commands accept any unique prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

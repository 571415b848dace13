package recap

import (
	"sort"

	"github.com/hray3182/CoParent/internal/models"
)

// notableEvents collects special events, public holidays and vacation custody
// overlapping [weekStart, weekEnd].
func notableEvents(events []models.CalendarEvent, weekStart, weekEnd models.Date, dir Directory) []Notable {
	var out []Notable
	for _, e := range events {
		if !wellFormed(e) || !e.Overlaps(weekStart, weekEnd) {
			continue
		}
		label, ok := notableLabel(e, dir)
		if !ok {
			continue
		}
		out = append(out, Notable{
			EventID: e.ID,
			Kind:    e.Kind.Tag(),
			Label:   label,
			Start:   e.Start,
			End:     e.End,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

func notableLabel(e models.CalendarEvent, dir Directory) (string, bool) {
	switch k := e.Kind.(type) {
	case models.SpecialEvent:
		return k.Title, true
	case models.PublicHoliday:
		if e.Title != "" {
			return e.Title, true
		}
		return "Public holiday", true
	case models.CustodyVacation:
		who := roleLabel(dir.role(k.Parent))
		if e.Title != "" {
			return e.Title + " (vacation, " + who + ")", true
		}
		return "Vacation (" + who + ")", true
	}
	return "", false
}

// Package ics exports a family calendar as an iCalendar feed.
package ics

import (
	"bytes"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/hray3182/CoParent/internal/models"
)

const productID = "-//CoParent//Custody Calendar//EN"

// Namer resolves a parent reference to the label shown in summaries.
type Namer func(ref models.ParentRef) string

type Exporter struct {
	name  string
	namer Namer
	now   func() time.Time
}

func NewExporter(calendarName string, namer Namer) *Exporter {
	if namer == nil {
		namer = func(ref models.ParentRef) string { return string(ref) }
	}
	return &Exporter{name: calendarName, namer: namer, now: time.Now}
}

// Calendar builds all-day VEVENTs. DTEND is exclusive, so it is the day after
// the inclusive end date.
func (x *Exporter) Calendar(events []models.CalendarEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if x.name != "" {
		cal.Props.SetText(ical.PropName, x.name)
	}

	stamp := x.now().UTC()
	for _, e := range events {
		if e.Kind == nil {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.ID+"@coparent")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDate(ical.PropDateTimeStart, e.Start.Time())
		event.Props.SetDate(ical.PropDateTimeEnd, e.End.AddDays(1).Time())
		event.Props.SetText(ical.PropSummary, x.summary(e))
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		event.Props.SetText(ical.PropCategories, string(e.Kind.Tag()))
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

func (x *Exporter) Write(w io.Writer, events []models.CalendarEvent) error {
	return ical.NewEncoder(w).Encode(x.Calendar(events))
}

func (x *Exporter) Bytes(events []models.CalendarEvent) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.Write(&buf, events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (x *Exporter) summary(e models.CalendarEvent) string {
	switch k := e.Kind.(type) {
	case models.CustodyPrimary:
		return "Custody: " + x.namer(k.Parent)
	case models.CustodyVacation:
		if e.Title != "" {
			return e.Title + " (vacation: " + x.namer(k.Parent) + ")"
		}
		return "Vacation: " + x.namer(k.Parent)
	case models.SpecialEvent:
		return k.Title
	}
	if e.Title != "" {
		return e.Title
	}
	return "Public holiday"
}

// ParentNamer labels parents by role and display name, e.g. "Parent A (Ana)".
func ParentNamer(parents ...models.Parent) Namer {
	labels := make(map[models.ParentRef]string, len(parents))
	for _, p := range parents {
		label := string(p.Role)
		if p.DisplayName != "" {
			label += " (" + p.DisplayName + ")"
		}
		labels[p.Ref] = label
	}
	return func(ref models.ParentRef) string {
		if l, ok := labels[ref]; ok {
			return l
		}
		return "unknown parent"
	}
}

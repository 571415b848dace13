// Package holidays loads public holiday calendars from YAML files.
//
// A file looks like:
//
//	name: France
//	holidays:
//	  - name: Christmas
//	    date: 2024-12-25
//	  - name: Toussaint school holidays
//	    start: 2024-10-19
//	    end: 2024-11-03
package holidays

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hray3182/CoParent/internal/models"
)

// Holiday is a single entry. Date is shorthand for a one-day Start/End.
type Holiday struct {
	Name  string      `yaml:"name"`
	Date  models.Date `yaml:"date,omitempty"`
	Start models.Date `yaml:"start,omitempty"`
	End   models.Date `yaml:"end,omitempty"`
}

type Calendar struct {
	Name     string    `yaml:"name"`
	Holidays []Holiday `yaml:"holidays"`
}

var ErrInvalidHoliday = errors.New("invalid holiday")

func LoadFile(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holidays file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Calendar, error) {
	var cal Calendar
	if err := yaml.NewDecoder(r).Decode(&cal); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	for i := range cal.Holidays {
		if err := cal.Holidays[i].normalize(); err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i, err)
		}
	}
	return &cal, nil
}

func (h *Holiday) normalize() error {
	if h.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidHoliday)
	}
	if !h.Date.IsZero() {
		if !h.Start.IsZero() || !h.End.IsZero() {
			return fmt.Errorf("%w: %s sets both date and start/end", ErrInvalidHoliday, h.Name)
		}
		h.Start, h.End = h.Date, h.Date
		return nil
	}
	if h.Start.IsZero() {
		return fmt.Errorf("%w: %s has no date", ErrInvalidHoliday, h.Name)
	}
	if h.End.IsZero() {
		h.End = h.Start
	}
	if h.End.Before(h.Start) {
		return fmt.Errorf("%w: %s ends before it starts", ErrInvalidHoliday, h.Name)
	}
	return nil
}

// ToEvents converts the calendar into public holiday events. Ids are derived
// from the family, name and range, so the same file always yields the same ids.
func (c *Calendar) ToEvents(familyID int64) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		key := fmt.Sprintf("%d/%s/%s/%s", familyID, h.Name, h.Start, h.End)
		events = append(events, models.CalendarEvent{
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte("coparent:holiday:"+key)).String(),
			Kind:        models.PublicHoliday{},
			Start:       h.Start,
			End:         h.End,
			Title:       h.Name,
			Description: c.Name,
		})
	}
	return events
}

// Missing drops the holidays already present in existing, matching on id or
// on an identical title and range.
func Missing(existing, holidays []models.CalendarEvent) []models.CalendarEvent {
	type key struct {
		title      string
		start, end models.Date
	}
	ids := make(map[string]bool, len(existing))
	seen := make(map[key]bool, len(existing))
	for _, e := range existing {
		ids[e.ID] = true
		if _, ok := e.Kind.(models.PublicHoliday); ok {
			seen[key{e.Title, e.Start, e.End}] = true
		}
	}

	var out []models.CalendarEvent
	for _, h := range holidays {
		k := key{h.Title, h.Start, h.End}
		if ids[h.ID] || seen[k] {
			continue
		}
		seen[k] = true
		ids[h.ID] = true
		out = append(out, h)
	}
	return out
}

package models

import (
	"errors"
	"fmt"
	"time"
)

// ParentRef identifies a parent account. It is stable across sessions.
type ParentRef string

// KindTag is the storage tag of an event kind.
type KindTag string

const (
	TagCustodyPrimary  KindTag = "custody_primary"
	TagCustodyVacation KindTag = "custody_vacation"
	TagSpecialEvent    KindTag = "special_event"
	TagPublicHoliday   KindTag = "public_holiday"
)

// Kind is the closed set of event variants. Each variant carries only the
// fields it requires.
type Kind interface {
	Tag() KindTag
	sealed()
}

// CustodyPrimary is a regular custody period held by Parent.
type CustodyPrimary struct {
	Parent ParentRef
}

// CustodyVacation is a holiday custody period held by Parent.
type CustodyVacation struct {
	Parent ParentRef
}

// SpecialEvent is an informational entry such as a school play.
type SpecialEvent struct {
	Title string
}

type PublicHoliday struct{}

func (CustodyPrimary) Tag() KindTag  { return TagCustodyPrimary }
func (CustodyVacation) Tag() KindTag { return TagCustodyVacation }
func (SpecialEvent) Tag() KindTag    { return TagSpecialEvent }
func (PublicHoliday) Tag() KindTag   { return TagPublicHoliday }

func (CustodyPrimary) sealed()  {}
func (CustodyVacation) sealed() {}
func (SpecialEvent) sealed()    {}
func (PublicHoliday) sealed()   {}

// CalendarEvent is the single stored entity of a family calendar.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"-"`
	Start       Date      `json:"start_date"`
	End         Date      `json:"end_date"` // inclusive
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrInvalidEvent = errors.New("invalid event")
)

// KindFromTag rebuilds a Kind from its storage columns.
func KindFromTag(tag KindTag, parentRef, title string) (Kind, error) {
	switch tag {
	case TagCustodyPrimary, TagCustodyVacation:
		if parentRef == "" {
			return nil, fmt.Errorf("%w: %s requires a parent", ErrInvalidEvent, tag)
		}
		if tag == TagCustodyPrimary {
			return CustodyPrimary{Parent: ParentRef(parentRef)}, nil
		}
		return CustodyVacation{Parent: ParentRef(parentRef)}, nil
	case TagSpecialEvent:
		if title == "" {
			return nil, fmt.Errorf("%w: special event requires a title", ErrInvalidEvent)
		}
		return SpecialEvent{Title: title}, nil
	case TagPublicHoliday:
		return PublicHoliday{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, tag)
	}
}

// Validate checks the invariants every stored event must satisfy.
func (e *CalendarEvent) Validate() error {
	if e.Kind == nil {
		return fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidEvent)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidEvent, e.End, e.Start)
	}
	switch k := e.Kind.(type) {
	case CustodyPrimary:
		if k.Parent == "" {
			return fmt.Errorf("%w: custody requires a parent", ErrInvalidEvent)
		}
	case CustodyVacation:
		if k.Parent == "" {
			return fmt.Errorf("%w: vacation requires a parent", ErrInvalidEvent)
		}
	case SpecialEvent:
		if k.Title == "" {
			return fmt.Errorf("%w: special event requires a title", ErrInvalidEvent)
		}
	}
	return nil
}

// IsCustody returns true for primary and vacation custody periods.
func (e *CalendarEvent) IsCustody() bool {
	switch e.Kind.(type) {
	case CustodyPrimary, CustodyVacation:
		return true
	}
	return false
}

// Parent returns the custodial parent of a custody event, or "" otherwise.
func (e *CalendarEvent) Parent() ParentRef {
	switch k := e.Kind.(type) {
	case CustodyPrimary:
		return k.Parent
	case CustodyVacation:
		return k.Parent
	}
	return ""
}

// Label is the short human label of the event, without parent names.
func (e *CalendarEvent) Label() string {
	switch k := e.Kind.(type) {
	case SpecialEvent:
		return k.Title
	case PublicHoliday:
		if e.Title != "" {
			return e.Title
		}
		return "Public holiday"
	case CustodyVacation:
		if e.Title != "" {
			return e.Title
		}
		return "Vacation"
	case CustodyPrimary:
		return "Custody"
	}
	return ""
}

// StoredTitle is the value persisted in the title column.
func (e *CalendarEvent) StoredTitle() string {
	if k, ok := e.Kind.(SpecialEvent); ok {
		return k.Title
	}
	return e.Title
}

// Contains reports whether d falls inside the event range.
func (e *CalendarEvent) Contains(d Date) bool {
	return d.Within(e.Start, e.End)
}

// Overlaps reports whether the event intersects [start, end].
func (e *CalendarEvent) Overlaps(start, end Date) bool {
	return !e.End.Before(start) && !e.Start.After(end)
}

// Days is the inclusive length of the event.
func (e *CalendarEvent) Days() int {
	return e.Start.DaysUntil(e.End) + 1
}

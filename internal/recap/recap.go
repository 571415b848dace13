// Package recap derives the day and week facts shown to both parents from a
// snapshot of the family calendar. Everything here is pure: the same inputs
// always produce the same Result, and bad data degrades to "unknown" instead
// of failing.
package recap

import (
	"sort"
	"strconv"
	"time"

	"github.com/samber/mo"

	"github.com/hray3182/CoParent/internal/models"
)

// Unknown is rendered for every fact that could not be derived.
const Unknown = "unknown"

// Directory resolves parent references to their display roles.
type Directory map[models.ParentRef]models.Parent

func NewDirectory(parents ...models.Parent) Directory {
	dir := make(Directory, len(parents))
	for _, p := range parents {
		dir[p.Ref] = p
	}
	return dir
}

func (d Directory) role(ref models.ParentRef) mo.Option[models.Role] {
	p, ok := d[ref]
	if !ok || !p.Role.Valid() {
		return mo.None[models.Role]()
	}
	return mo.Some(p.Role)
}

// Notable is an entry of the week overview.
type Notable struct {
	EventID string         `json:"event_id"`
	Kind    models.KindTag `json:"type"`
	Label   string         `json:"label"`
	Start   models.Date    `json:"start_date"`
	End     models.Date    `json:"end_date"`
}

// Range renders a single date when the entry lasts one day.
func (n Notable) Range() string {
	if n.Start.Equal(n.End) {
		return n.Start.String()
	}
	return n.Start.String() + " to " + n.End.String()
}

type Result struct {
	Today                models.Date
	CustodialParentToday mo.Option[models.Role]
	DaysRemaining        mo.Option[int]
	NextTransitionDate   mo.Option[models.Date]
	NextTransitionParent mo.Option[models.Role]
	CurrentEventID       mo.Option[string]
	WeekStart            models.Date
	WeekEnd              models.Date
	NotableThisWeek      []Notable
}

// Unknown reports that no custody period covers today.
func (r Result) Unknown() bool {
	return r.CurrentEventID.IsAbsent()
}

func (r Result) CustodianLabel() string {
	return roleLabel(r.CustodialParentToday)
}

func (r Result) NextParentLabel() string {
	return roleLabel(r.NextTransitionParent)
}

func (r Result) NextTransitionLabel() string {
	if d, ok := r.NextTransitionDate.Get(); ok {
		return d.String()
	}
	return Unknown
}

func (r Result) DaysRemainingLabel() string {
	if n, ok := r.DaysRemaining.Get(); ok {
		return strconv.Itoa(n)
	}
	return Unknown
}

// HandoverChanged reports whether next, derived for the same day as prev,
// names a different custodian or a different next handover.
func HandoverChanged(prev, next Result) bool {
	if !prev.Today.Equal(next.Today) {
		return false
	}
	return prev.CustodianLabel() != next.CustodianLabel() ||
		prev.NextTransitionLabel() != next.NextTransitionLabel() ||
		prev.NextParentLabel() != next.NextParentLabel()
}

// TransitionIsTomorrow is used for the handover notice.
func (r Result) TransitionIsTomorrow() bool {
	d, ok := r.NextTransitionDate.Get()
	return ok && d.Equal(r.Today.AddDays(1))
}

func roleLabel(o mo.Option[models.Role]) string {
	if r, ok := o.Get(); ok {
		return string(r)
	}
	return Unknown
}

type options struct {
	weekStart time.Weekday
}

type Option func(*options)

// WithWeekStart sets the first day of the week overview (Monday by default).
func WithWeekStart(d time.Weekday) Option {
	return func(o *options) { o.weekStart = d }
}

// Derive computes the recap for today. Overlapping custody events are
// resolved by precedes; events with no kind or an inverted range are ignored.
func Derive(today models.Date, events []models.CalendarEvent, dir Directory, opts ...Option) Result {
	o := options{weekStart: time.Monday}
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{Today: today}
	res.WeekStart, res.WeekEnd = weekOf(today, o.weekStart)

	var custody []models.CalendarEvent
	for _, e := range events {
		if !wellFormed(e) {
			continue
		}
		if e.IsCustody() {
			custody = append(custody, e)
		}
	}
	sort.SliceStable(custody, func(i, j int) bool { return precedes(custody[i], custody[j]) })

	res.NotableThisWeek = notableEvents(events, res.WeekStart, res.WeekEnd, dir)

	current, ok := firstContaining(custody, today)
	if !ok {
		return res
	}
	res.CurrentEventID = mo.Some(current.ID)
	res.CustodialParentToday = dir.role(current.Parent())

	days := today.DaysUntil(current.End) + 1
	if days < 0 {
		days = 0
	}
	res.DaysRemaining = mo.Some(days)

	transition := current.End.AddDays(1)
	for _, e := range custody {
		if e.Start.Before(transition) {
			continue
		}
		// A gap in the schedule moves the handover to the next actual start.
		if e.Start.After(transition) {
			transition = e.Start
		}
		res.NextTransitionParent = dir.role(e.Parent())
		break
	}
	res.NextTransitionDate = mo.Some(transition)

	return res
}

// precedes orders custody candidates: earliest start first, then the most
// recently created, then by id so the choice never depends on input order.
func precedes(a, b models.CalendarEvent) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func firstContaining(sorted []models.CalendarEvent, day models.Date) (models.CalendarEvent, bool) {
	for _, e := range sorted {
		if e.Contains(day) {
			return e, true
		}
	}
	return models.CalendarEvent{}, false
}

func wellFormed(e models.CalendarEvent) bool {
	return e.Kind != nil && !e.Start.IsZero() && !e.End.IsZero() && !e.End.Before(e.Start)
}

func weekOf(day models.Date, first time.Weekday) (models.Date, models.Date) {
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	start := day.AddDays(-offset)
	return start, start.AddDays(6)
}

package custody

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/rrule"
)

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrMissingParent     = errors.New("missing parent")
)

// GeneratedMarker prefixes the description of every generated event.
const GeneratedMarker = "Generated automatically"

const (
	MinDurationMonths = 1
	MaxDurationMonths = 24
)

var validate = validator.New()

// Request holds the parameters of a generation run.
type Request struct {
	Pattern        Pattern     `json:"pattern" validate:"required,oneof=alternating_week 2255 custom"`
	StartDate      models.Date `json:"start_date"`
	StartingParent models.Role `json:"starting_parent" validate:"required"`
	DurationMonths int         `json:"duration_months" validate:"min=1,max=24"`
	Variant        Variant     `json:"variant,omitempty" validate:"omitempty,oneof=four_segment weekly_split"`
}

// Validate rejects a request before any computation happens.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidParameters)
	}
	if !r.StartingParent.Valid() {
		return fmt.Errorf("%w: unknown starting parent %q", ErrInvalidParameters, r.StartingParent)
	}
	if r.Variant != "" && r.Pattern != PatternTwoTwoFiveFive {
		return fmt.Errorf("%w: variant only applies to the 2255 pattern", ErrInvalidParameters)
	}
	return nil
}

// Boundary is the first day after the generated span.
func (r Request) Boundary() models.Date {
	return r.StartDate.AddMonths(r.DurationMonths)
}

// CycleRule is the RRULE of the cycle anchors, or "" for the custom pattern.
func CycleRule(req Request) string {
	if req.Pattern == PatternCustom {
		return ""
	}
	last := req.Boundary().AddDays(-1)
	b := rrule.RRuleBuilder{Freq: rrule.FreqDaily, Interval: cycleDays, Until: &last}
	return b.String()
}

type options struct {
	newID func() string
	now   func() time.Time
}

type Option func(*options)

// WithIDFunc overrides the event id source (uuid by default).
func WithIDFunc(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithClock overrides the CreatedAt stamp of generated events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Generate computes the custody periods described by req. It never touches a
// store: the caller persists the returned batch atomically. A custom pattern
// yields an empty batch.
func Generate(req Request, pair models.ParentPair, opts ...Option) ([]models.CalendarEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !pair.Complete() {
		return nil, fmt.Errorf("%w: both parent identities must be resolved", ErrMissingParent)
	}
	if req.Pattern == PatternCustom {
		return []models.CalendarEvent{}, nil
	}

	segs, ok := cycleFor(req.Pattern, req.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported pattern %q", ErrInvalidParameters, req.Pattern)
	}

	o := options{newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	boundary := req.Boundary()
	last := boundary.AddDays(-1)
	anchors, err := rrule.CycleStarts(req.StartDate, CycleRule(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	roles := map[holder]models.Role{
		first:  req.StartingParent,
		second: req.StartingParent.Other(),
	}
	description := fmt.Sprintf("%s (%s)", GeneratedMarker, req.Pattern)
	createdAt := o.now()

	events := make([]models.CalendarEvent, 0, len(anchors)*len(segs))
	for _, anchor := range anchors {
		cursor := anchor
		for _, seg := range segs {
			if !cursor.Before(boundary) {
				break
			}
			end := cursor.AddDays(seg.days - 1)
			if !end.Before(boundary) {
				end = last
			}
			p := seg.holder.parent(pair, req.StartingParent)
			events = append(events, models.CalendarEvent{
				ID:          o.newID(),
				Kind:        models.CustodyPrimary{Parent: p.Ref},
				Start:       cursor,
				End:         end,
				Title:       "Custody " + string(roles[seg.holder]),
				Description: description,
				CreatedAt:   createdAt,
			})
			cursor = cursor.AddDays(seg.days)
		}
	}
	return events, nil
}

// IsGenerated reports whether e was produced by Generate.
func IsGenerated(e models.CalendarEvent) bool {
	return strings.HasPrefix(e.Description, GeneratedMarker)
}

// Span returns the first start and last end of a batch.
func Span(batch []models.CalendarEvent) (start, end models.Date, ok bool) {
	for i, e := range batch {
		if i == 0 || e.Start.Before(start) {
			start = e.Start
		}
		if i == 0 || e.End.After(end) {
			end = e.End
		}
	}
	return start, end, len(batch) > 0
}

// Overlapping lists the stored custody events intersecting the span of batch.
// Nothing is removed: the caller decides whether to warn.
func Overlapping(existing, batch []models.CalendarEvent) []models.CalendarEvent {
	start, end, ok := Span(batch)
	if !ok {
		return nil
	}
	var out []models.CalendarEvent
	for _, e := range existing {
		if e.IsCustody() && e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time of day. It is kept as midnight UTC so
// that day arithmetic never crosses a DST transition.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in loc. Custody changes at
// local midnight, so "today" must always be derived this way.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// DateFromTime keeps the clock fields of t untouched. Use it for values that
// already represent a day, such as a scanned SQL DATE.
func DateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate rejects 0001-01-01: it is the zero Date, which means "no date".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d := DateFromTime(t)
	if d.IsZero() {
		return Date{}, fmt.Errorf("invalid date %q, 0001-01-01 is reserved", s)
	}
	return d, nil
}

// MustParseDate is ParseDate for literals in tests and tables.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

// In returns local midnight of the day in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths follows time.AddDate normalization: 2024-01-31 plus one month is
// 2024-03-02.
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// DaysUntil returns the number of days from d to other (negative when other
// is earlier).
func (d Date) DaysUntil(other Date) int {
	// Unix seconds, not Sub: a Duration saturates after about 292 years.
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Within reports whether d lies in the inclusive range [start, end].
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

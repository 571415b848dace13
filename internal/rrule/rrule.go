package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/CoParent/internal/models"
)

// ParseRRule parses an RFC 5545 RRULE string anchored on a calendar day.
func ParseRRule(ruleStr string, dtstart models.Date) (*rrule.RRule, error) {
	// Handle RRULE: prefix if present
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}

	// Days are midnight UTC; anchoring in UTC keeps the expansion free of DST shifts.
	opt.Dtstart = dtstart.Time()
	return rrule.NewRRule(*opt)
}

// RRuleBuilder creates an RRULE string from components
type RRuleBuilder struct {
	Freq     rrule.Frequency
	Interval int
	Count    int
	Until    *models.Date
}

// Common frequencies
const (
	FreqDaily  = rrule.DAILY
	FreqWeekly = rrule.WEEKLY
)

func (b *RRuleBuilder) String() string {
	var parts []string

	freqMap := map[rrule.Frequency]string{
		rrule.DAILY:  "DAILY",
		rrule.WEEKLY: "WEEKLY",
	}
	parts = append(parts, fmt.Sprintf("FREQ=%s", freqMap[b.Freq]))

	if b.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", b.Interval))
	}
	if b.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", b.Count))
	}
	if b.Until != nil {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", b.Until.Time().Format("20060102T150405Z")))
	}

	return strings.Join(parts, ";")
}

// CycleStarts expands ruleStr from start and returns every occurrence as a
// day. The UNTIL bound is inclusive.
func CycleStarts(start models.Date, ruleStr string) ([]models.Date, error) {
	rule, err := ParseRRule(ruleStr, start)
	if err != nil {
		return nil, err
	}
	occurrences := rule.All()
	starts := make([]models.Date, 0, len(occurrences))
	for _, t := range occurrences {
		starts = append(starts, models.DateFromTime(t.UTC()))
	}
	return starts, nil
}

// HumanReadable describes an RRULE string in plain English.
func HumanReadable(ruleStr string) string {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	info := make(map[string]string)
	for _, p := range strings.Split(ruleStr, ";") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 {
			info[kv[0]] = kv[1]
		}
	}

	var result strings.Builder
	unit := map[string]string{"DAILY": "day", "WEEKLY": "week"}[info["FREQ"]]
	if unit == "" {
		return "once"
	}
	if interval := info["INTERVAL"]; interval == "" || interval == "1" {
		result.WriteString("every " + unit)
	} else {
		result.WriteString(fmt.Sprintf("every %s %ss", interval, unit))
	}
	if count := info["COUNT"]; count != "" {
		result.WriteString(fmt.Sprintf(", %s times", count))
	}
	if until := info["UNTIL"]; until != "" {
		if t, err := time.Parse("20060102T150405Z", until); err == nil {
			result.WriteString(", until " + models.DateFromTime(t).String())
		}
	}
	return result.String()
}

package models

import "time"

// RecapSettings controls the daily recap push for one parent.
type RecapSettings struct {
	ParentRef          ParentRef `json:"parent_ref"`
	ChatID             int64     `json:"chat_id"`
	Enabled            bool      `json:"enabled"`
	TransitionNotice   bool      `json:"transition_notice"` // extra line on the eve of a handover
	QuietStart         string    `json:"quiet_start"`       // HH:MM format
	QuietEnd           string    `json:"quiet_end"`         // HH:MM format
	LastRecapDate      *Date     `json:"last_recap_date"`
	LastRecapMessageID *int      `json:"last_recap_message_id"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewDefaultRecapSettings(ref ParentRef, chatID int64) *RecapSettings {
	return &RecapSettings{
		ParentRef:        ref,
		ChatID:           chatID,
		Enabled:          true,
		TransitionNotice: true,
		QuietStart:       "22:00",
		QuietEnd:         "07:00",
		UpdatedAt:        time.Now(),
	}
}

// ShouldSendRecap reports whether the recap for today is still due.
func (s *RecapSettings) ShouldSendRecap(now time.Time, loc *time.Location) bool {
	if !s.Enabled || s.ChatID == 0 {
		return false
	}
	if s.IsQuietHours(now, loc) {
		return false
	}
	if s.LastRecapDate == nil {
		return true
	}
	return s.LastRecapDate.Before(DateOf(now, loc))
}

// ShouldSendUpdate reports whether a schedule change may be pushed now.
// It follows the handover reminder toggle, not the daily recap one.
func (s *RecapSettings) ShouldSendUpdate(now time.Time, loc *time.Location) bool {
	return s.TransitionNotice && s.ChatID != 0 && !s.IsQuietHours(now, loc)
}

// IsQuietHours checks if the given time is within quiet hours
func (s *RecapSettings) IsQuietHours(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	localTime := t.In(loc)
	currentMinutes := localTime.Hour()*60 + localTime.Minute()

	startHour, startMin := parseTimeString(s.QuietStart)
	endHour, endMin := parseTimeString(s.QuietEnd)

	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	if startMinutes == endMinutes {
		return false
	}
	// Handle overnight quiet hours (e.g., 22:00 - 07:00)
	if startMinutes > endMinutes {
		return currentMinutes >= startMinutes || currentMinutes < endMinutes
	}
	return currentMinutes >= startMinutes && currentMinutes < endMinutes
}

// parseTimeString parses "HH:MM" format to hours and minutes
func parseTimeString(timeStr string) (hour, min int) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

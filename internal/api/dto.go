package api

import (
	"fmt"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/recap"
)

type planRequest struct {
	Pattern        string `json:"pattern" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartingParent string `json:"starting_parent" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"required"`
	Variant        string `json:"variant"`
}

// toRequest only converts; range checks are left to the generator.
func (r planRequest) toRequest() (custody.Request, error) {
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		return custody.Request{}, fmt.Errorf("%w: start_date: %v", custody.ErrInvalidParameters, err)
	}
	role, err := models.ParseRole(r.StartingParent)
	if err != nil {
		return custody.Request{}, fmt.Errorf("%w: starting_parent: %v", custody.ErrInvalidParameters, err)
	}
	return custody.Request{
		Pattern:        custody.Pattern(r.Pattern),
		StartDate:      start,
		StartingParent: role,
		DurationMonths: r.DurationMonths,
		Variant:        custody.Variant(r.Variant),
	}, nil
}

type eventRequest struct {
	Type        string `json:"type" validate:"required,oneof=custody_primary custody_vacation special_event public_holiday"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ParentRef   string `json:"parent_ref"`
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (r eventRequest) toEvent(id string) (models.CalendarEvent, error) {
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("%w: start_date: %v", models.ErrInvalidEvent, err)
	}
	end := start
	if r.EndDate != "" {
		if end, err = models.ParseDate(r.EndDate); err != nil {
			return models.CalendarEvent{}, fmt.Errorf("%w: end_date: %v", models.ErrInvalidEvent, err)
		}
	}
	kind, err := models.KindFromTag(models.KindTag(r.Type), r.ParentRef, r.Title)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	return models.CalendarEvent{
		ID:          id,
		Kind:        kind,
		Start:       start,
		End:         end,
		Title:       r.Title,
		Description: r.Description,
	}, nil
}

type eventResponse struct {
	ID          string         `json:"id"`
	Type        models.KindTag `json:"type"`
	ParentRef   string         `json:"parent_ref,omitempty"`
	StartDate   models.Date    `json:"start_date"`
	EndDate     models.Date    `json:"end_date"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
}

func toEventResponse(e models.CalendarEvent) eventResponse {
	resp := eventResponse{
		ID:          e.ID,
		ParentRef:   string(e.Parent()),
		StartDate:   e.Start,
		EndDate:     e.End,
		Title:       e.StoredTitle(),
		Description: e.Description,
	}
	if e.Kind != nil {
		resp.Type = e.Kind.Tag()
	}
	return resp
}

func toEventResponses(events []models.CalendarEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

type previewResponse struct {
	Events   []eventResponse `json:"events"`
	Overlaps []eventResponse `json:"overlaps"`
}

// recapResponse renders every unknown fact as the literal "unknown".
type recapResponse struct {
	Today                string          `json:"today"`
	CustodialParentToday string          `json:"custodial_parent_today"`
	DaysRemaining        string          `json:"days_remaining"`
	NextTransitionDate   string          `json:"next_transition_date"`
	NextTransitionParent string          `json:"next_transition_parent"`
	CurrentEventID       string          `json:"current_event_id,omitempty"`
	WeekStart            models.Date     `json:"week_start"`
	WeekEnd              models.Date     `json:"week_end"`
	NotableThisWeek      []recap.Notable `json:"notable_this_week"`
}

func toRecapResponse(r recap.Result) recapResponse {
	notable := r.NotableThisWeek
	if notable == nil {
		notable = []recap.Notable{}
	}
	return recapResponse{
		Today:                r.Today.String(),
		CustodialParentToday: r.CustodianLabel(),
		DaysRemaining:        r.DaysRemainingLabel(),
		NextTransitionDate:   r.NextTransitionLabel(),
		NextTransitionParent: r.NextParentLabel(),
		CurrentEventID:       r.CurrentEventID.OrEmpty(),
		WeekStart:            r.WeekStart,
		WeekEnd:              r.WeekEnd,
		NotableThisWeek:      notable,
	}
}

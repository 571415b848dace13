package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/repository"
)

// EventEditor is implemented by stores that support single-event changes.
type EventEditor interface {
	Create(ctx context.Context, familyID int64, event *models.CalendarEvent) error
	Update(ctx context.Context, familyID int64, event *models.CalendarEvent) error
	Delete(ctx context.Context, familyID int64, eventID string) error
	GetByID(ctx context.Context, familyID int64, eventID string) (*models.CalendarEvent, error)
}

// RangeReader is implemented by stores that filter events by date range.
type RangeReader interface {
	GetByDateRange(ctx context.Context, familyID int64, start, end models.Date) ([]models.CalendarEvent, error)
}

var ErrReadOnly = errors.New("event store does not support single-event changes")

func (s *Service) editor() (EventEditor, error) {
	ed, ok := s.events.(EventEditor)
	if !ok {
		return nil, ErrReadOnly
	}
	return ed, nil
}

// CreateEvent validates and stores a single event. Custody events must name a
// parent of the family.
func (s *Service) CreateEvent(ctx context.Context, familyID int64, e *models.CalendarEvent) error {
	ed, err := s.editor()
	if err != nil {
		return err
	}
	if err := s.checkEvent(ctx, familyID, e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := ed.Create(ctx, familyID, e); err != nil {
		return storeError("create event", err)
	}
	s.changed(familyID)
	return nil
}

func (s *Service) UpdateEvent(ctx context.Context, familyID int64, e *models.CalendarEvent) error {
	ed, err := s.editor()
	if err != nil {
		return err
	}
	if err := s.checkEvent(ctx, familyID, e); err != nil {
		return err
	}
	if err := ed.Update(ctx, familyID, e); err != nil {
		return storeError("update event", err)
	}
	s.changed(familyID)
	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, familyID int64, eventID string) error {
	ed, err := s.editor()
	if err != nil {
		return err
	}
	if err := ed.Delete(ctx, familyID, eventID); err != nil {
		return storeError("delete event", err)
	}
	s.changed(familyID)
	return nil
}

func (s *Service) GetEvent(ctx context.Context, familyID int64, eventID string) (*models.CalendarEvent, error) {
	ed, err := s.editor()
	if err != nil {
		return nil, err
	}
	e, err := ed.GetByID(ctx, familyID, eventID)
	if err != nil {
		return nil, storeError("get event", err)
	}
	return e, nil
}

// Events returns the full snapshot of a family calendar.
func (s *Service) Events(ctx context.Context, familyID int64) ([]models.CalendarEvent, error) {
	events, err := s.events.ReadAll(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("%w: read events: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

// EventsBetween returns the events overlapping [start, end], ordered by start.
func (s *Service) EventsBetween(ctx context.Context, familyID int64, start, end models.Date) ([]models.CalendarEvent, error) {
	if rr, ok := s.events.(RangeReader); ok {
		events, err := rr.GetByDateRange(ctx, familyID, start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: read events: %v", ErrStoreUnavailable, err)
		}
		return events, nil
	}
	all, err := s.Events(ctx, familyID)
	if err != nil {
		return nil, err
	}
	var events []models.CalendarEvent
	for _, e := range all {
		if e.Overlaps(start, end) {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *Service) checkEvent(ctx context.Context, familyID int64, e *models.CalendarEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ref := e.Parent()
	if ref == "" {
		return nil
	}
	parents, err := s.parents.ListParents(ctx, familyID)
	if err != nil {
		return fmt.Errorf("%w: list parents: %v", ErrStoreUnavailable, err)
	}
	for _, p := range parents {
		if p.Ref == ref {
			return nil
		}
	}
	return fmt.Errorf("%w: parent %s is not a member of this family", models.ErrInvalidEvent, ref)
}

func (s *Service) changed(familyID int64) {
	if s.onChange != nil {
		s.onChange(familyID)
	}
}

// storeError keeps not-found and validation errors visible and reports
// everything else as an unavailable store.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, models.ErrInvalidEvent) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// Package planner connects the pure schedule generator and recap deriver to
// the family event store.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/recap"
)

var ErrStoreUnavailable = errors.New("event store unavailable")

// EventStore is the family-keyed calendar store.
type EventStore interface {
	ReadAll(ctx context.Context, familyID int64) ([]models.CalendarEvent, error)
	// BulkWrite persists the whole batch or nothing.
	BulkWrite(ctx context.Context, familyID int64, events []models.CalendarEvent) error
}

// ParentDirectory lists the registered parents of a family.
type ParentDirectory interface {
	ListParents(ctx context.Context, familyID int64) ([]models.Parent, error)
}

type Service struct {
	events  EventStore
	parents ParentDirectory
	now     func() time.Time
	// onChange is called after a successful write, e.g. to refresh recaps.
	onChange func(familyID int64)
}

func New(events EventStore, parents ParentDirectory) *Service {
	return &Service{
		events:  events,
		parents: parents,
		now:     time.Now,
	}
}

// OnChange registers a callback fired after every successful write.
func (s *Service) OnChange(f func(familyID int64)) {
	s.onChange = f
}

// SetClock overrides the clock used to stamp generated events.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Preview is a generated batch together with the stored custody events it
// would overlap. Overlaps are reported, never removed.
type Preview struct {
	Request  custody.Request
	Events   []models.CalendarEvent
	Overlaps []models.CalendarEvent
}

// ResolveParentPair returns both parents. When one is missing it returns the
// partial pair with an error wrapping custody.ErrMissingParent.
func (s *Service) ResolveParentPair(ctx context.Context, familyID int64) (models.ParentPair, error) {
	parents, err := s.parents.ListParents(ctx, familyID)
	if err != nil {
		return models.ParentPair{}, fmt.Errorf("%w: list parents: %v", ErrStoreUnavailable, err)
	}
	pair, err := models.NewParentPair(parents)
	if err != nil {
		return pair, fmt.Errorf("%w: %v", custody.ErrMissingParent, err)
	}
	return pair, nil
}

// PreviewPlan generates a batch without writing it.
func (s *Service) PreviewPlan(ctx context.Context, familyID int64, req custody.Request) (*Preview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pair, err := s.ResolveParentPair(ctx, familyID)
	if err != nil {
		return nil, err
	}
	batch, err := custody.Generate(req, pair, custody.WithClock(s.now))
	if err != nil {
		return nil, err
	}

	preview := &Preview{Request: req, Events: batch}
	start, end, ok := custody.Span(batch)
	if !ok {
		return preview, nil
	}
	existing, err := s.EventsBetween(ctx, familyID, start, end)
	if err != nil {
		return nil, err
	}
	preview.Overlaps = custody.Overlapping(existing, batch)
	return preview, nil
}

// GeneratePlan generates a batch and writes it in one atomic call. Existing
// events are kept as they are.
func (s *Service) GeneratePlan(ctx context.Context, familyID int64, req custody.Request) ([]models.CalendarEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pair, err := s.ResolveParentPair(ctx, familyID)
	if err != nil {
		return nil, err
	}
	batch, err := custody.Generate(req, pair, custody.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, familyID, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Commit writes a previously previewed batch.
func (s *Service) Commit(ctx context.Context, familyID int64, batch []models.CalendarEvent) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.events.BulkWrite(ctx, familyID, batch); err != nil {
		return fmt.Errorf("%w: bulk write: %v", ErrStoreUnavailable, err)
	}
	s.changed(familyID)
	return nil
}

// Recap reads the current snapshot and derives the recap for today. Only
// store failures are reported; the derivation itself never fails.
func (s *Service) Recap(ctx context.Context, familyID int64, today models.Date, opts ...recap.Option) (recap.Result, error) {
	events, err := s.events.ReadAll(ctx, familyID)
	if err != nil {
		return recap.Result{}, fmt.Errorf("%w: read events: %v", ErrStoreUnavailable, err)
	}
	parents, err := s.parents.ListParents(ctx, familyID)
	if err != nil {
		return recap.Result{}, fmt.Errorf("%w: list parents: %v", ErrStoreUnavailable, err)
	}
	return recap.Derive(today, events, recap.NewDirectory(parents...), opts...), nil
}

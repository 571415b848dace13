// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	nextID   int64
	families map[int64]models.Family
	parents  map[models.ParentRef]models.Parent
	events   map[int64]map[string]models.CalendarEvent
	settings map[models.ParentRef]models.RecapSettings
	children map[string]models.Child
	now      func() time.Time
}

func New() *Store {
	return &Store{
		families: make(map[int64]models.Family),
		parents:  make(map[models.ParentRef]models.Parent),
		events:   make(map[int64]map[string]models.CalendarEvent),
		settings: make(map[models.ParentRef]models.RecapSettings),
		children: make(map[string]models.Child),
		now:      time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) ReadAll(_ context.Context, familyID int64) ([]models.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CalendarEvent, 0, len(s.events[familyID]))
	for _, e := range s.events[familyID] {
		out = append(out, e)
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) BulkWrite(_ context.Context, familyID int64, events []models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.families[familyID]; !ok {
		return repository.ErrNotFound
	}
	seen := make(map[string]bool, len(events))
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if _, dup := s.events[familyID][events[i].ID]; dup || seen[events[i].ID] {
			return fmt.Errorf("event %d: duplicate id %s", i, events[i].ID)
		}
		seen[events[i].ID] = true
	}

	bucket := s.bucket(familyID)
	for _, e := range events {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now()
		}
		bucket[e.ID] = e
	}
	return nil
}

func (s *Store) Create(_ context.Context, familyID int64, event *models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.families[familyID]; !ok {
		return repository.ErrNotFound
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, dup := s.events[familyID][event.ID]; dup {
		return fmt.Errorf("duplicate event id %s", event.ID)
	}
	event.CreatedAt = s.now()
	s.bucket(familyID)[event.ID] = *event
	return nil
}

func (s *Store) Update(_ context.Context, familyID int64, event *models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.events[familyID][event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	event.CreatedAt = old.CreatedAt
	s.events[familyID][event.ID] = *event
	return nil
}

func (s *Store) Delete(_ context.Context, familyID int64, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[familyID][eventID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events[familyID], eventID)
	return nil
}

func (s *Store) GetByID(_ context.Context, familyID int64, eventID string) (*models.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[familyID][eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *Store) GetByDateRange(_ context.Context, familyID int64, start, end models.Date) ([]models.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.CalendarEvent
	for _, e := range s.events[familyID] {
		if e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) CreateFamily(_ context.Context, f *models.Family, creator *models.Parent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTelegram(creator.TelegramID); err != nil {
		return err
	}
	s.nextID++
	f.ID = s.nextID
	f.CreatedAt = s.now()
	if f.WeekStart == "" {
		f.WeekStart = "monday"
	}
	s.families[f.ID] = *f

	creator.FamilyID = f.ID
	creator.Role = models.RoleParentA
	s.addParent(creator)
	return nil
}

func (s *Store) GetFamily(_ context.Context, familyID int64) (*models.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.families[familyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *Store) ListFamilies(_ context.Context) ([]models.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Family, 0, len(s.families))
	for _, f := range s.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) JoinFamily(_ context.Context, familyID int64, p *models.Parent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.families[familyID]; !ok {
		return repository.ErrNotFound
	}
	if err := s.checkTelegram(p.TelegramID); err != nil {
		return err
	}
	for _, existing := range s.parents {
		if existing.FamilyID == familyID && existing.Role == models.RoleParentB {
			return repository.ErrFamilyFull
		}
	}
	p.FamilyID = familyID
	p.Role = models.RoleParentB
	s.addParent(p)
	return nil
}

func (s *Store) ParentByTelegramID(_ context.Context, telegramID int64) (*models.Parent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.parents {
		if telegramID != 0 && p.TelegramID == telegramID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListParents(_ context.Context, familyID int64) ([]models.Parent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Parent
	for _, p := range s.parents {
		if p.FamilyID == familyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (s *Store) GetRecapSettings(_ context.Context, ref models.ParentRef, chatID int64) (*models.RecapSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parents[ref]; !ok {
		return nil, repository.ErrNotFound
	}
	st, ok := s.settings[ref]
	if !ok {
		st = *models.NewDefaultRecapSettings(ref, chatID)
		s.settings[ref] = st
	}
	return &st, nil
}

func (s *Store) SaveRecapSettings(_ context.Context, st *models.RecapSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.settings[st.ParentRef]
	if !ok {
		return repository.ErrNotFound
	}
	next := *st
	next.LastRecapDate = old.LastRecapDate
	next.LastRecapMessageID = old.LastRecapMessageID
	next.UpdatedAt = s.now()
	s.settings[st.ParentRef] = next
	return nil
}

func (s *Store) ListRecapSettings(_ context.Context, familyID int64) ([]models.RecapSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RecapSettings
	for ref, st := range s.settings {
		if s.parents[ref].FamilyID == familyID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.parents[out[i].ParentRef].Role < s.parents[out[j].ParentRef].Role
	})
	return out, nil
}

func (s *Store) MarkRecapSent(_ context.Context, ref models.ParentRef, day models.Date, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settings[ref]
	if !ok {
		return repository.ErrNotFound
	}
	st.LastRecapDate = &day
	st.LastRecapMessageID = &messageID
	st.UpdatedAt = s.now()
	s.settings[ref] = st
	return nil
}

func (s *Store) CreateChild(_ context.Context, c *models.Child) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.families[c.FamilyID]; !ok {
		return repository.ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, dup := s.children[c.ID]; dup {
		return fmt.Errorf("duplicate child id %s", c.ID)
	}
	c.CreatedAt = s.now()
	s.children[c.ID] = *c
	return nil
}

func (s *Store) GetChild(_ context.Context, familyID int64, childID string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.children[childID]
	if !ok || c.FamilyID != familyID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListChildren(_ context.Context, familyID int64) ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Child
	for _, c := range s.children {
		if c.FamilyID == familyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BirthDate.Equal(out[j].BirthDate) {
			return out[i].BirthDate.Before(out[j].BirthDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) UpdateChild(_ context.Context, c *models.Child) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.children[c.ID]
	if !ok || old.FamilyID != c.FamilyID {
		return repository.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	s.children[c.ID] = *c
	return nil
}

func (s *Store) DeleteChild(_ context.Context, familyID int64, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.children[childID]
	if !ok || c.FamilyID != familyID {
		return repository.ErrNotFound
	}
	delete(s.children, childID)
	return nil
}

func (s *Store) bucket(familyID int64) map[string]models.CalendarEvent {
	b, ok := s.events[familyID]
	if !ok {
		b = make(map[string]models.CalendarEvent)
		s.events[familyID] = b
	}
	return b
}

func (s *Store) checkTelegram(id int64) error {
	if id == 0 {
		return nil
	}
	for _, p := range s.parents {
		if p.TelegramID == id {
			return repository.ErrAlreadyRegistered
		}
	}
	return nil
}

func (s *Store) addParent(p *models.Parent) {
	if p.Ref == "" {
		p.Ref = models.ParentRef(uuid.NewString())
	}
	p.CreatedAt = s.now()
	s.parents[p.Ref] = *p
}

func sortEvents(events []models.CalendarEvent) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

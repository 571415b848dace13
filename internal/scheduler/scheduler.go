package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/hray3182/CoParent/internal/format"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/recap"
)

// Sender is the part of tgbotapi.BotAPI used to push recaps.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Store interface {
	ListFamilies(ctx context.Context) ([]models.Family, error)
	GetFamily(ctx context.Context, familyID int64) (*models.Family, error)
	ListRecapSettings(ctx context.Context, familyID int64) ([]models.RecapSettings, error)
	MarkRecapSent(ctx context.Context, ref models.ParentRef, day models.Date, messageID int) error
}

type Recaper interface {
	Recap(ctx context.Context, familyID int64, today models.Date, opts ...recap.Option) (recap.Result, error)
}

type Scheduler struct {
	api      Sender
	store    Store
	recaps   Recaper
	spec     string
	loc      *time.Location
	now      func() time.Time
	notifyCh chan struct{}

	mu      sync.Mutex
	pending map[int64]bool

	cacheMu sync.RWMutex
	cache   map[int64]recap.Result
}

func New(api Sender, store Store, recaps Recaper, spec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		api:      api,
		store:    store,
		recaps:   recaps,
		spec:     spec,
		loc:      loc,
		now:      time.Now,
		notifyCh: make(chan struct{}, 1),
		pending:  make(map[int64]bool),
		cache:    make(map[int64]recap.Result),
	}
}

// Notify marks the family's events as changed and wakes the loop. Non-blocking
// if a refresh is already pending. The refresh pushes an update when the
// handover moved.
func (s *Scheduler) Notify(familyID int64) {
	s.mu.Lock()
	s.pending[familyID] = true
	s.mu.Unlock()

	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// Latest returns the last derived recap of a family, the baseline the next
// refresh is compared against.
func (s *Scheduler) Latest(familyID int64) (recap.Result, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	res, ok := s.cache[familyID]
	return res, ok
}

// Start runs the daily push on the cron schedule and refreshes recaps on
// Notify until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		s.RunDaily(runCtx)
	}); err != nil {
		return fmt.Errorf("invalid recap schedule %q: %w", s.spec, err)
	}
	c.Start()
	log.Printf("Scheduler started (recap schedule %q, %s)", s.spec, s.loc)

	s.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			<-c.Stop().Done()
			log.Println("Scheduler stopped")
			return nil
		case <-s.notifyCh:
			for _, id := range s.takePending() {
				s.refresh(ctx, id)
			}
		}
	}
}

func (s *Scheduler) takePending() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.pending = make(map[int64]bool)
	return ids
}

func (s *Scheduler) refreshAll(ctx context.Context) {
	families, err := s.store.ListFamilies(ctx)
	if err != nil {
		log.Printf("Failed to list families: %v", err)
		return
	}
	for _, f := range families {
		s.derive(ctx, f)
	}
}

func (s *Scheduler) refresh(ctx context.Context, familyID int64) {
	f, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		log.Printf("Failed to get family %d: %v", familyID, err)
		return
	}
	prev, known := s.Latest(familyID)
	res, ok := s.derive(ctx, *f)
	if !ok || !known || !recap.HandoverChanged(prev, res) {
		return
	}
	s.sendHandoverUpdate(ctx, *f, res)
}

// sendHandoverUpdate tells parents that an edit moved the handover.
func (s *Scheduler) sendHandoverUpdate(ctx context.Context, f models.Family, res recap.Result) {
	settings, err := s.store.ListRecapSettings(ctx, f.ID)
	if err != nil {
		log.Printf("Failed to get recap settings for family %d: %v", f.ID, err)
		return
	}
	parsed := format.ParseMarkdown(format.HandoverUpdate(res))
	now := s.now()
	for _, st := range settings {
		if !st.ShouldSendUpdate(now, f.Location()) {
			continue
		}
		msg := tgbotapi.NewMessage(st.ChatID, parsed.Text)
		msg.Entities = parsed.Entities
		if _, err := s.api.Send(msg); err != nil {
			log.Printf("Failed to send schedule update to %d: %v", st.ChatID, err)
			continue
		}
		log.Printf("Sent schedule update to parent %s (family %d)", st.ParentRef, f.ID)
	}
}

func (s *Scheduler) derive(ctx context.Context, f models.Family) (recap.Result, bool) {
	today := models.DateOf(s.now(), f.Location())
	res, err := s.recaps.Recap(ctx, f.ID, today, recap.WithWeekStart(f.FirstWeekday()))
	if err != nil {
		log.Printf("Failed to derive recap for family %d: %v", f.ID, err)
		return res, false
	}
	s.cacheMu.Lock()
	s.cache[f.ID] = res
	s.cacheMu.Unlock()
	return res, true
}

// RunDaily derives today's recap of every family and pushes it to each
// parent whose recap is still due.
func (s *Scheduler) RunDaily(ctx context.Context) {
	families, err := s.store.ListFamilies(ctx)
	if err != nil {
		log.Printf("Failed to list families: %v", err)
		return
	}
	for _, f := range families {
		res, ok := s.derive(ctx, f)
		if !ok {
			continue
		}
		settings, err := s.store.ListRecapSettings(ctx, f.ID)
		if err != nil {
			log.Printf("Failed to get recap settings for family %d: %v", f.ID, err)
			continue
		}
		for i := range settings {
			s.sendRecapIfNeeded(ctx, &settings[i], f, res)
		}
	}
}

func (s *Scheduler) sendRecapIfNeeded(ctx context.Context, settings *models.RecapSettings, f models.Family, res recap.Result) {
	now := s.now()
	if !settings.ShouldSendRecap(now, f.Location()) {
		return
	}

	// Replace yesterday's recap instead of stacking them up.
	if settings.LastRecapMessageID != nil {
		del := tgbotapi.NewDeleteMessage(settings.ChatID, *settings.LastRecapMessageID)
		if _, err := s.api.Request(del); err != nil {
			log.Printf("Failed to delete old recap message %d: %v", *settings.LastRecapMessageID, err)
		}
	}

	text := format.RecapMessage(res)
	if settings.TransitionNotice {
		if notice := format.TransitionNotice(res); notice != "" {
			text += "\n" + notice
		}
	}

	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(settings.ChatID, parsed.Text)
	msg.Entities = parsed.Entities

	sent, err := s.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send recap to %d: %v", settings.ChatID, err)
		return
	}
	if err := s.store.MarkRecapSent(ctx, settings.ParentRef, res.Today, sent.MessageID); err != nil {
		log.Printf("Failed to record recap for %s: %v", settings.ParentRef, err)
	}
	log.Printf("Sent recap to parent %s (family %d, msg_id=%d)", settings.ParentRef, f.ID, sent.MessageID)
}

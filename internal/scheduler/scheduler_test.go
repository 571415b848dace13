package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository/memory"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	deleted []int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if del, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted = append(f.deleted, del.MessageID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fixture struct {
	store  *memory.Store
	sender *fakeSender
	sched  *Scheduler
	family models.Family

	mu    sync.Mutex
	clock time.Time
}

func (fx *fixture) setClock(t time.Time) {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.clock = t
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	fx := &fixture{store: memory.New(), sender: &fakeSender{}}
	fx.family = models.Family{Name: "Martin", Timezone: "Europe/Paris"}
	alice := models.Parent{DisplayName: "Alice", TelegramID: 11}
	bob := models.Parent{DisplayName: "Bob", TelegramID: 22}
	require.NoError(t, fx.store.CreateFamily(ctx, &fx.family, &alice))
	require.NoError(t, fx.store.JoinFamily(ctx, fx.family.ID, &bob))

	svc := planner.New(fx.store, fx.store)
	_, err = svc.GeneratePlan(ctx, fx.family.ID, custody.Request{
		Pattern:        custody.PatternAlternatingWeek,
		StartDate:      models.MustParseDate("2024-01-01"),
		StartingParent: models.RoleParentA,
		DurationMonths: 2,
	})
	require.NoError(t, err)

	_, err = fx.store.GetRecapSettings(ctx, alice.Ref, 11)
	require.NoError(t, err)
	_, err = fx.store.GetRecapSettings(ctx, bob.Ref, 22)
	require.NoError(t, err)

	fx.clock = time.Date(2024, 1, 14, 8, 0, 0, 0, paris)
	fx.sched = New(fx.sender, fx.store, svc, "0 7 * * *", paris)
	fx.sched.now = func() time.Time {
		fx.mu.Lock()
		defer fx.mu.Unlock()
		return fx.clock
	}
	return fx
}

func TestRunDaily_SendsOncePerDay(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.sched.RunDaily(ctx)
	require.Len(t, fx.sender.sent, 2)
	for _, msg := range fx.sender.sent {
		assert.Contains(t, msg.Text, "Today, 2024-01-14")
		assert.Contains(t, msg.Text, "Custody: Parent B, last day")
		assert.Contains(t, msg.Text, "Handover tomorrow: Parent A takes over.")
		assert.NotEmpty(t, msg.Entities)
	}

	fx.sched.RunDaily(ctx)
	assert.Len(t, fx.sender.sent, 2)

	res, ok := fx.sched.Latest(fx.family.ID)
	require.True(t, ok)
	assert.Equal(t, "Parent B", res.CustodianLabel())

	// The next day replaces the previous recap message.
	fx.clock = fx.clock.AddDate(0, 0, 1)
	fx.sched.RunDaily(ctx)
	require.Len(t, fx.sender.sent, 4)
	assert.ElementsMatch(t, []int{1, 2}, fx.sender.deleted)
	assert.NotContains(t, fx.sender.sent[3].Text, "Handover tomorrow")
}

func TestRunDaily_RespectsQuietHours(t *testing.T) {
	fx := setup(t)
	fx.clock = time.Date(2024, 1, 14, 23, 0, 0, 0, fx.family.Location())

	fx.sched.RunDaily(context.Background())
	assert.Empty(t, fx.sender.sent)
}

func TestRunDaily_DisabledParent(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	parent, err := fx.store.ParentByTelegramID(ctx, 22)
	require.NoError(t, err)
	settings, err := fx.store.GetRecapSettings(ctx, parent.Ref, 22)
	require.NoError(t, err)
	settings.Enabled = false
	require.NoError(t, fx.store.SaveRecapSettings(ctx, settings))

	fx.sched.RunDaily(ctx)
	require.Len(t, fx.sender.sent, 1)
	assert.Equal(t, int64(11), fx.sender.sent[0].ChatID)
}

func TestNotifyRefreshesCache(t *testing.T) {
	fx := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fx.sched.Start(ctx) }()

	assert.Eventually(t, func() bool {
		_, ok := fx.sched.Latest(fx.family.ID)
		return ok
	}, time.Second, 10*time.Millisecond)

	fx.setClock(time.Date(2024, 1, 16, 9, 0, 0, 0, fx.family.Location()))
	fx.sched.Notify(fx.family.ID)
	fx.sched.Notify(fx.family.ID)

	assert.Eventually(t, func() bool {
		res, _ := fx.sched.Latest(fx.family.ID)
		return res.Today.String() == "2024-01-16"
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	fx := setup(t)
	fx.sched.spec = "every morning"
	assert.Error(t, fx.sched.Start(context.Background()))
}

func TestRefresh_PushesMovedHandover(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	fx.sched.refreshAll(ctx)

	// Nothing changed yet.
	fx.sched.refresh(ctx, fx.family.ID)
	assert.Empty(t, fx.sender.sent)

	events, err := fx.store.ReadAll(ctx, fx.family.ID)
	require.NoError(t, err)
	for _, e := range events {
		if e.Start.String() == "2024-01-15" {
			require.NoError(t, fx.store.Delete(ctx, fx.family.ID, e.ID))
		}
	}

	fx.sched.refresh(ctx, fx.family.ID)
	require.Len(t, fx.sender.sent, 2)
	for _, msg := range fx.sender.sent {
		assert.Contains(t, msg.Text, "Schedule updated")
		assert.Contains(t, msg.Text, "Next handover: 2024-01-22 to Parent B")
	}

	fx.sched.refresh(ctx, fx.family.ID)
	assert.Len(t, fx.sender.sent, 2)
}

func TestRefresh_NoUpdateDuringQuietHours(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	fx.setClock(time.Date(2024, 1, 14, 23, 0, 0, 0, fx.family.Location()))
	fx.sched.refreshAll(ctx)

	events, err := fx.store.ReadAll(ctx, fx.family.ID)
	require.NoError(t, err)
	for _, e := range events {
		if e.Start.String() == "2024-01-15" {
			require.NoError(t, fx.store.Delete(ctx, fx.family.ID, e.ID))
		}
	}

	fx.sched.refresh(ctx, fx.family.ID)
	assert.Empty(t, fx.sender.sent)
	res, ok := fx.sched.Latest(fx.family.ID)
	require.True(t, ok)
	assert.Equal(t, "2024-01-22", res.NextTransitionLabel())
}

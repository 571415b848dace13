package handlers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/ai"
	"github.com/hray3182/CoParent/internal/planner"
)

const (
	confirmTimeout = 5 * time.Minute
	sessionTimeout = 5 * time.Minute
	maxHistoryLen  = 10
)

// pendingAction is a change waiting for the parent's confirmation. Exactly one
// of preview, deleteID, deleteChildID or intent is set.
type pendingAction struct {
	familyID      int64
	preview       *planner.Preview
	deleteID      string
	deleteChildID string
	intent        *ai.Intent
	expiresAt     time.Time
}

type pendingStore struct {
	mu      sync.Mutex
	byUser  map[int64]*pendingAction
	timeout time.Duration
}

func newPendingStore() *pendingStore {
	return &pendingStore{byUser: make(map[int64]*pendingAction), timeout: confirmTimeout}
}

// put replaces any earlier pending action of the user.
func (s *pendingStore) put(userID int64, a *pendingAction, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.expiresAt = now.Add(s.timeout)
	s.byUser[userID] = a
}

// take removes and returns the pending action if it has not expired.
func (s *pendingStore) take(userID int64, now time.Time) (*pendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byUser[userID]
	if !ok {
		return nil, false
	}
	delete(s.byUser, userID)
	if now.After(a.expiresAt) {
		return nil, false
	}
	return a, true
}

func (h *Handlers) requestConfirmation(chatID, userID int64, text string, a *pendingAction) {
	h.pending.put(userID, a, h.now())
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Confirm", fmt.Sprintf("confirm:%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", fmt.Sprintf("cancel:%d", userID)),
		),
	)
	h.sendWithKeyboard(chatID, text, keyboard)
}

func (h *Handlers) runPending(ctx context.Context, from *tgbotapi.User, chatID int64, a *pendingAction) string {
	switch {
	case a.preview != nil:
		if err := h.planner.Commit(ctx, a.familyID, a.preview.Events); err != nil {
			log.Printf("Failed to write plan for family %d: %v", a.familyID, err)
			return userError(err)
		}
		return fmt.Sprintf("%d custody periods added.", len(a.preview.Events))
	case a.deleteID != "":
		if err := h.planner.DeleteEvent(ctx, a.familyID, a.deleteID); err != nil {
			return userError(err)
		}
		return "Event deleted."
	case a.deleteChildID != "":
		if err := h.store.DeleteChild(ctx, a.familyID, a.deleteChildID); err != nil {
			log.Printf("Failed to delete child %s: %v", a.deleteChildID, err)
			return userError(err)
		}
		return "Child profile removed."
	case a.intent != nil:
		c, ok := h.resolveCaller(ctx, chatID, from)
		if !ok {
			return ""
		}
		return h.executeIntent(ctx, c, chatID, a.intent, false)
	}
	return ""
}

// session is the recent AI conversation of one user.
type session struct {
	history   []ai.Message
	expiresAt time.Time
}

type sessionStore struct {
	mu     sync.Mutex
	byUser map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{byUser: make(map[int64]*session)}
}

// append adds messages and returns a copy of the trimmed history.
func (s *sessionStore) append(userID int64, now time.Time, msgs ...ai.Message) []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if !ok || now.After(sess.expiresAt) {
		sess = &session{}
		s.byUser[userID] = sess
	}
	sess.history = append(sess.history, msgs...)
	if len(sess.history) > maxHistoryLen {
		sess.history = sess.history[len(sess.history)-maxHistoryLen:]
	}
	sess.expiresAt = now.Add(sessionTimeout)
	return append([]ai.Message(nil), sess.history...)
}

func (s *sessionStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/ai"
	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/format"
	"github.com/hray3182/CoParent/internal/holidays"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository"
)

// Sender is the part of tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Options struct {
	AI       *ai.Client
	Holidays *holidays.Calendar
	Timezone string // default for new families
	DevMode  bool
}

type Handlers struct {
	api      Sender
	store    repository.Store
	planner  *planner.Service
	ai       *ai.Client
	holidays *holidays.Calendar
	timezone string
	devMode  bool
	now      func() time.Time
	pending  *pendingStore
	sessions *sessionStore
}

func New(api Sender, store repository.Store, svc *planner.Service, opts Options) *Handlers {
	return &Handlers{
		api:      api,
		store:    store,
		planner:  svc,
		ai:       opts.AI,
		holidays: opts.Holidays,
		timezone: opts.Timezone,
		devMode:  opts.DevMode,
		now:      time.Now,
		pending:  newPendingStore(),
		sessions: newSessionStore(),
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "family":
		h.handleFamily(ctx, msg)
	case "join":
		h.handleJoin(ctx, msg)
	case "plan":
		h.handlePlan(ctx, msg)
	case "recap":
		h.handleRecap(ctx, msg)
	case "event":
		h.handleEvent(ctx, msg)
	case "events":
		h.handleEventList(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "holidays":
		h.handleHolidays(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	case "settings":
		h.handleSettings(ctx, msg)
	case "children":
		h.handleChildren(ctx, msg)
	case "child":
		h.handleChild(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.handleAIMessage(ctx, msg)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
	if callback.Message == nil {
		return
	}

	// Callback data: "settings:<action>" or "<confirm|cancel>:<userID>"
	parts := strings.Split(callback.Data, ":")
	if len(parts) < 2 {
		return
	}
	if parts[0] == "settings" {
		h.handleSettingsCallback(ctx, callback, parts[1:])
		return
	}

	action := parts[0]
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}

	// Verify the callback is from the correct user
	if callback.From.ID != userID {
		h.answerCallbackWithAlert(callback.ID, "This confirmation belongs to someone else.")
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	pending, ok := h.pending.take(userID, h.now())
	if !ok {
		h.editMessageText(chatID, messageID, "Confirmation expired.")
		return
	}

	switch action {
	case "confirm":
		result := h.runPending(ctx, callback.From, chatID, pending)
		h.editMessageText(chatID, messageID, "Confirmed.\n\n"+result)
	case "cancel":
		h.editMessageText(chatID, messageID, "Cancelled. Nothing was changed.")
	}
}

func (h *Handlers) answerCallbackWithAlert(callbackID string, text string) {
	answer := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback with alert: %v", err)
	}
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) editMessageWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	edit.ReplyMarkup = &keyboard
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message with keyboard: %v", err)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	msg.ReplyMarkup = keyboard
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) deleteMessage(chatID int64, messageID int) {
	deleteMsg := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := h.api.Request(deleteMsg); err != nil {
		log.Printf("Failed to delete message: %v", err)
	}
}

func (h *Handlers) debug(msg string, kv ...any) {
	if !h.devMode {
		return
	}
	var sb strings.Builder
	sb.WriteString("[debug] ")
	sb.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", kv[i], kv[i+1])
	}
	log.Println(sb.String())
}

// caller is the registered parent behind a message plus their family.
type caller struct {
	parent models.Parent
	family models.Family
}

func (c caller) today(now time.Time) models.Date {
	return models.DateOf(now, c.family.Location())
}

// resolveCaller loads the parent and family of a Telegram user. It answers
// the chat itself when the user has no family yet.
func (h *Handlers) resolveCaller(ctx context.Context, chatID int64, from *tgbotapi.User) (*caller, bool) {
	if from == nil {
		return nil, false
	}
	p, err := h.store.ParentByTelegramID(ctx, from.ID)
	if errors.Is(err, repository.ErrNotFound) {
		h.sendMessage(chatID, "You are not part of a family yet. Create one with /family <name> or join with /join <family id>.")
		return nil, false
	}
	if err != nil {
		log.Printf("Failed to get parent %d: %v", from.ID, err)
		h.sendMessage(chatID, "Something went wrong, please try again later.")
		return nil, false
	}
	f, err := h.store.GetFamily(ctx, p.FamilyID)
	if err != nil {
		log.Printf("Failed to get family %d: %v", p.FamilyID, err)
		h.sendMessage(chatID, "Something went wrong, please try again later.")
		return nil, false
	}
	return &caller{parent: *p, family: *f}, true
}

// userError turns a domain error into a message safe to show in the chat.
func userError(err error) string {
	switch {
	case errors.Is(err, custody.ErrMissingParent):
		return "Both parents must be registered first. Ask your co-parent to /join the family."
	case errors.Is(err, custody.ErrInvalidParameters), errors.Is(err, models.ErrInvalidEvent),
		errors.Is(err, models.ErrInvalidChild):
		return "Invalid request: " + err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return "Not found."
	case errors.Is(err, errAmbiguousID):
		return "Several entries start with that id, please type more of it."
	case errors.Is(err, planner.ErrStoreUnavailable):
		return "The calendar is unavailable right now. Nothing was changed, please try again later."
	}
	return "Something went wrong, please try again later."
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(`Hello %s!

I keep the shared custody calendar for both parents.

• /family <name> creates a family, /join <id> joins your co-parent's
• /plan sets up a custody schedule
• /recap tells you who has the children today and when the next handover is

You can also just write to me, for example "alternate weeks from next Monday for 6 months, starting with me".

Use /help to see every command.`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `**Commands**

**Family**
/family <name> - create a family (you become Parent A)
/family - show your family
/join <family id> - join a family as Parent B

**Schedule**
/plan <alternating|2255|custom> <YYYY-MM-DD> <a|b|me> <months> [weekly_split] - preview and confirm a plan
/recap - today's custody and the week ahead

**Events**
/event <type> <start> [end] [a|b|title] - add an event
/events [start end] - list events
/delete <id> - delete an event
/holidays - import the public holiday calendar
/export - download the calendar as .ics

**Children**
/children - list the children profiles
/child add <YYYY-MM-DD> <name> - add a child
/child set <id> <field> <value> - update a profile field (- clears it)
/child delete <id> - remove a child

/settings - daily recap settings`
	h.sendMessage(msg.Chat.ID, text)
}

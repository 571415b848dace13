package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/ai"
	"github.com/hray3182/CoParent/internal/custody"
)

const minConfidence = 0.5

func (h *Handlers) handleAIMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	h.debug("Incoming message", "from", msg.From.FirstName, "username", msg.From.UserName, "text", msg.Text)

	// A typed yes/no answers the pending confirmation, like the buttons do.
	if h.handleConfirmationResponse(ctx, msg) {
		return
	}
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Free text is not enabled. Use /help to see the commands.")
		return
	}

	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}

	var turn []ai.Message
	if r := msg.ReplyToMessage; r != nil && r.Text != "" && r.From != nil && r.From.IsBot {
		turn = append(turn, ai.Message{Role: "assistant", Content: r.Text})
	}
	turn = append(turn, ai.Message{Role: "user", Content: msg.Text})
	history := h.sessions.append(msg.From.ID, h.now(), turn...)
	h.debug("Conversation history", "count", len(history))

	intent, err := h.ai.ParseIntentWithHistory(ctx, history, c.family.Location())
	if err != nil {
		log.Printf("Failed to parse intent: %v", err)
		h.sendMessage(msg.Chat.ID, "Sorry, I could not understand that. Try rephrasing, or use /help to see the commands.")
		return
	}

	h.debug("Parsed intent",
		"action", intent.Action,
		"confidence", intent.Confidence,
		"needs_confirmation", intent.NeedsConfirmation,
		"need_more_info", intent.NeedMoreInfo,
		"params", intent.Parameters,
		"raw", intent.RawResponse)

	if intent.Confidence < minConfidence {
		h.reply(msg, firstNonEmpty(intent.AIMessage, "I am not sure what you mean, could you say it differently?"))
		return
	}
	if intent.NeedMoreInfo {
		h.reply(msg, firstNonEmpty(intent.FollowUpPrompt, intent.AIMessage, "Could you give me a few more details?"))
		return
	}

	switch {
	case intent.Action == ai.ActionGeneratePlan:
		// Plans are always previewed before anything is written.
		h.sessions.clear(msg.From.ID)
		req, err := intent.PlanRequest(c.parent.Role)
		if err != nil {
			h.sendMessage(msg.Chat.ID, userError(err))
			return
		}
		h.previewPlan(ctx, msg.Chat.ID, msg.From.ID, c, req)
		return
	case intent.Action == ai.ActionDeleteEvent:
		h.sessions.clear(msg.From.ID)
		if intent.EventID() == "" {
			h.sendMessage(msg.Chat.ID, "Which event? Use /events to see the ids.")
			return
		}
		h.confirmDelete(ctx, msg.Chat.ID, msg.From.ID, c, intent.EventID())
		return
	case intent.NeedsConfirmation:
		h.sessions.clear(msg.From.ID)
		text := firstNonEmpty(intent.ConfirmationReason, intent.AIMessage, fmt.Sprintf("Run %s?", intent.Action))
		h.requestConfirmation(msg.Chat.ID, msg.From.ID, text, &pendingAction{
			familyID: c.family.ID,
			intent:   intent,
		})
		return
	}

	h.debug("Executing action", "action", intent.Action, "params", intent.Parameters)
	result := h.executeIntent(ctx, c, msg.Chat.ID, intent, true)

	// Queries keep the conversation so follow-ups can refer to them.
	if intent.Action == ai.ActionListEvents || intent.Action == ai.ActionRecap {
		h.sessions.append(msg.From.ID, h.now(), ai.Message{Role: "assistant", Content: result})
	} else {
		h.sessions.clear(msg.From.ID)
	}
}

// reply sends text and records it as the assistant's turn.
func (h *Handlers) reply(msg *tgbotapi.Message, text string) {
	h.sendMessage(msg.Chat.ID, text)
	h.sessions.append(msg.From.ID, h.now(), ai.Message{Role: "assistant", Content: text})
}

// executeIntent runs an intent and returns the text shown to the parent. The
// text is also sent to chatID when send is set.
func (h *Handlers) executeIntent(ctx context.Context, c *caller, chatID int64, intent *ai.Intent, send bool) string {
	var result string
	switch intent.Action {
	case ai.ActionGeneratePlan:
		result = h.executePlan(ctx, c, intent)
	case ai.ActionRecap:
		text, err := h.recapText(ctx, c)
		if err != nil {
			log.Printf("Failed to derive recap for family %d: %v", c.family.ID, err)
			text = userError(err)
		}
		result = text
	case ai.ActionCreateEvent:
		result = h.executeCreateEvent(ctx, c, intent)
	case ai.ActionListEvents:
		start, end, ok := intent.DateRange()
		if !ok {
			start = c.today(h.now())
			end = start.AddMonths(1)
		}
		result = h.listEvents(ctx, c, start, end)
	case ai.ActionDeleteEvent:
		e, err := h.findEvent(ctx, c.family.ID, intent.EventID())
		if err == nil {
			err = h.planner.DeleteEvent(ctx, c.family.ID, e.ID)
		}
		if err != nil {
			result = userError(err)
		} else {
			result = "Event deleted."
		}
	default:
		result = firstNonEmpty(intent.AIMessage, "I can set up custody plans, give you a recap, and add, list or delete events. Use /help for the commands.")
	}
	if intent.AIMessage != "" && intent.Action != ai.ActionUnknown {
		result = intent.AIMessage + "\n\n" + result
	}
	if send {
		h.sendMessage(chatID, result)
	}
	return result
}

func (h *Handlers) executePlan(ctx context.Context, c *caller, intent *ai.Intent) string {
	req, err := intent.PlanRequest(c.parent.Role)
	if err != nil {
		return userError(err)
	}
	batch, err := h.planner.GeneratePlan(ctx, c.family.ID, req)
	if err != nil {
		log.Printf("Failed to generate plan for family %d: %v", c.family.ID, err)
		return userError(err)
	}
	return fmt.Sprintf("%d custody periods added.", len(batch))
}

func (h *Handlers) executeCreateEvent(ctx context.Context, c *caller, intent *ai.Intent) string {
	pair, err := h.planner.ResolveParentPair(ctx, c.family.ID)
	if err != nil && !errors.Is(err, custody.ErrMissingParent) {
		return userError(err)
	}
	e, err := intent.Event(pair, c.parent.Role)
	if err != nil {
		return userError(err)
	}
	return h.createEvent(ctx, c, &e)
}

// handleConfirmationResponse consumes a typed yes or no when a confirmation is
// pending.
func (h *Handlers) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message) bool {
	var confirm bool
	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "yes", "y", "ok", "confirm":
		confirm = true
	case "no", "n", "cancel":
	default:
		return false
	}

	pending, ok := h.pending.take(msg.From.ID, h.now())
	if !ok {
		return false
	}
	if !confirm {
		h.sendMessage(msg.Chat.ID, "Cancelled. Nothing was changed.")
		return true
	}
	h.sendMessage(msg.Chat.ID, h.runPending(ctx, msg.From, msg.Chat.ID, pending))
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

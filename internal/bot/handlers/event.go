package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/format"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/recap"
	"github.com/hray3182/CoParent/internal/repository"
)

var errAmbiguousID = errors.New("several entries start with that id")

const eventUsage = `Usage: /event <custody|vacation|special|holiday> <YYYY-MM-DD> [YYYY-MM-DD] [a|b|me|other] [title]
Examples:
/event vacation 2024-07-01 2024-07-14 b Summer camp
/event special 2024-05-20 School play`

func parseEventTag(s string) (models.KindTag, bool) {
	switch strings.ToLower(s) {
	case "custody", "primary", string(models.TagCustodyPrimary):
		return models.TagCustodyPrimary, true
	case "vacation", string(models.TagCustodyVacation):
		return models.TagCustodyVacation, true
	case "special", "event", string(models.TagSpecialEvent):
		return models.TagSpecialEvent, true
	case "holiday", string(models.TagPublicHoliday):
		return models.TagPublicHoliday, true
	}
	return "", false
}

// parseEventArgs reads the /event arguments. Custody kinds take an optional
// parent before the title and default to the caller.
func parseEventArgs(args string, pair models.ParentPair, callerRole models.Role) (models.CalendarEvent, error) {
	var e models.CalendarEvent
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return e, fmt.Errorf("%w: type and start date are required", models.ErrInvalidEvent)
	}
	tag, ok := parseEventTag(fields[0])
	if !ok {
		return e, fmt.Errorf("%w: unknown event type %q", models.ErrInvalidEvent, fields[0])
	}
	start, err := models.ParseDate(fields[1])
	if err != nil {
		return e, fmt.Errorf("%w: %v", models.ErrInvalidEvent, err)
	}
	end := start
	rest := fields[2:]
	if len(rest) > 0 {
		if d, err := models.ParseDate(rest[0]); err == nil {
			end = d
			rest = rest[1:]
		}
	}

	ref := ""
	if tag == models.TagCustodyPrimary || tag == models.TagCustodyVacation {
		role := callerRole
		if len(rest) > 0 {
			if r, err := models.ResolveRole(rest[0], callerRole); err == nil {
				role = r
				rest = rest[1:]
			}
		}
		ref = string(pair.ByRole(role).Ref)
	}
	title := strings.Join(rest, " ")

	kind, err := models.KindFromTag(tag, ref, title)
	if err != nil {
		return e, err
	}
	e = models.CalendarEvent{Kind: kind, Start: start, End: end, Title: title}
	return e, e.Validate()
}

func (h *Handlers) handleEvent(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, eventUsage)
		return
	}
	// A half-registered family still gets the pair resolved so far; special
	// events and holidays do not need the co-parent.
	pair, err := h.planner.ResolveParentPair(ctx, c.family.ID)
	if err != nil && !errors.Is(err, custody.ErrMissingParent) {
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	e, err := parseEventArgs(args, pair, c.parent.Role)
	if err != nil {
		h.sendMessage(msg.Chat.ID, userError(err)+"\n\n"+eventUsage)
		return
	}
	h.sendMessage(msg.Chat.ID, h.createEvent(ctx, c, &e))
}

func (h *Handlers) createEvent(ctx context.Context, c *caller, e *models.CalendarEvent) string {
	if err := h.planner.CreateEvent(ctx, c.family.ID, e); err != nil {
		h.debug("Create event failed", "family", c.family.ID, "err", err)
		return userError(err)
	}
	dir, _ := h.directory(ctx, c.family.ID)
	return "Event added:\n" + format.EventLine(*e, dir)
}

// directory maps the family's parent refs for display. Lookup failures leave
// the labels unknown.
func (h *Handlers) directory(ctx context.Context, familyID int64) (recap.Directory, error) {
	parents, err := h.store.ListParents(ctx, familyID)
	if err != nil {
		log.Printf("Failed to list parents of family %d: %v", familyID, err)
		return recap.NewDirectory(), err
	}
	return recap.NewDirectory(parents...), nil
}

func (h *Handlers) handleEventList(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	fields := strings.Fields(msg.CommandArguments())
	var start, end models.Date
	switch len(fields) {
	case 0:
		start = c.today(h.now())
		end = start.AddMonths(1)
	case 2:
		var err1, err2 error
		start, err1 = models.ParseDate(fields[0])
		end, err2 = models.ParseDate(fields[1])
		if err1 != nil || err2 != nil || end.Before(start) {
			h.sendMessage(msg.Chat.ID, "Usage: /events [YYYY-MM-DD YYYY-MM-DD]")
			return
		}
	default:
		h.sendMessage(msg.Chat.ID, "Usage: /events [YYYY-MM-DD YYYY-MM-DD]")
		return
	}
	h.sendMessage(msg.Chat.ID, h.listEvents(ctx, c, start, end))
}

func (h *Handlers) listEvents(ctx context.Context, c *caller, start, end models.Date) string {
	events, err := h.planner.EventsBetween(ctx, c.family.ID, start, end)
	if err != nil {
		log.Printf("Failed to list events of family %d: %v", c.family.ID, err)
		return userError(err)
	}
	dir, _ := h.directory(ctx, c.family.ID)
	return format.EventList(fmt.Sprintf("Events %s to %s", start, end), events, dir)
}

// findEvent resolves an id or a unique id prefix.
func (h *Handlers) findEvent(ctx context.Context, familyID int64, prefix string) (*models.CalendarEvent, error) {
	events, err := h.planner.Events(ctx, familyID)
	if err != nil {
		return nil, err
	}
	var match *models.CalendarEvent
	for i := range events {
		if events[i].ID == prefix {
			return &events[i], nil
		}
		if strings.HasPrefix(events[i].ID, prefix) {
			if match != nil {
				return nil, errAmbiguousID
			}
			match = &events[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: no event with id %q", repository.ErrNotFound, prefix)
	}
	return match, nil
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	prefix := strings.TrimSpace(msg.CommandArguments())
	if prefix == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /delete <event id>\nThe ids are shown by /events.")
		return
	}
	h.confirmDelete(ctx, msg.Chat.ID, msg.From.ID, c, prefix)
}

func (h *Handlers) confirmDelete(ctx context.Context, chatID, userID int64, c *caller, prefix string) {
	e, err := h.findEvent(ctx, c.family.ID, prefix)
	if err != nil {
		h.sendMessage(chatID, userError(err))
		return
	}
	dir, _ := h.directory(ctx, c.family.ID)
	h.requestConfirmation(chatID, userID, "Delete this event?\n"+format.EventLine(*e, dir), &pendingAction{
		familyID: c.family.ID,
		deleteID: e.ID,
	})
}

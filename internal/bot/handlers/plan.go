package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/format"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/recap"
)

const planUsage = "Usage: /plan <alternating|2255|custom> <YYYY-MM-DD> <a|b|me|other> <months> [four_segment|weekly_split]"

func parsePattern(s string) (custody.Pattern, bool) {
	switch strings.ToLower(s) {
	case "alternating", "alternating_week", "alternate", "weekly", "week":
		return custody.PatternAlternatingWeek, true
	case "2255", "2-2-5-5":
		return custody.PatternTwoTwoFiveFive, true
	case "custom", "manual":
		return custody.PatternCustom, true
	}
	return "", false
}

// parsePlanArgs reads the /plan arguments. Validation of the values themselves
// is left to the generator.
func parsePlanArgs(args string, callerRole models.Role) (custody.Request, error) {
	var req custody.Request
	fields := strings.Fields(args)
	if len(fields) < 4 || len(fields) > 5 {
		return req, fmt.Errorf("expected 4 or 5 arguments, got %d", len(fields))
	}

	pattern, ok := parsePattern(fields[0])
	if !ok {
		return req, fmt.Errorf("%w: unknown pattern %q", custody.ErrInvalidParameters, fields[0])
	}
	req.Pattern = pattern

	start, err := models.ParseDate(fields[1])
	if err != nil {
		return req, fmt.Errorf("%w: %v", custody.ErrInvalidParameters, err)
	}
	req.StartDate = start

	role, err := models.ResolveRole(fields[2], callerRole)
	if err != nil {
		return req, fmt.Errorf("%w: %v", custody.ErrInvalidParameters, err)
	}
	req.StartingParent = role

	months, err := strconv.Atoi(fields[3])
	if err != nil {
		return req, fmt.Errorf("%w: duration must be a number of months", custody.ErrInvalidParameters)
	}
	req.DurationMonths = months

	if len(fields) == 5 {
		req.Variant = custody.Variant(fields[4])
	}
	return req, nil
}

func (h *Handlers) handlePlan(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	if strings.TrimSpace(msg.CommandArguments()) == "" {
		h.sendMessage(msg.Chat.ID, planUsage)
		return
	}
	req, err := parsePlanArgs(msg.CommandArguments(), c.parent.Role)
	if err != nil {
		h.sendMessage(msg.Chat.ID, userError(err)+"\n\n"+planUsage)
		return
	}
	h.previewPlan(ctx, msg.Chat.ID, msg.From.ID, c, req)
}

// previewPlan generates the batch and asks for confirmation before writing.
func (h *Handlers) previewPlan(ctx context.Context, chatID, userID int64, c *caller, req custody.Request) {
	preview, err := h.planner.PreviewPlan(ctx, c.family.ID, req)
	if err != nil {
		h.debug("Plan preview failed", "family", c.family.ID, "err", err)
		h.sendMessage(chatID, userError(err))
		return
	}
	text := format.PlanPreviewMessage(preview)
	if len(preview.Events) == 0 {
		h.sendMessage(chatID, text)
		return
	}
	h.requestConfirmation(chatID, userID, text+"\nWrite this plan to the calendar?", &pendingAction{
		familyID: c.family.ID,
		preview:  preview,
	})
}

func (h *Handlers) handleRecap(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	text, err := h.recapText(ctx, c)
	if err != nil {
		log.Printf("Failed to derive recap for family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) recapText(ctx context.Context, c *caller) (string, error) {
	res, err := h.planner.Recap(ctx, c.family.ID, c.today(h.now()), recap.WithWeekStart(c.family.FirstWeekday()))
	if err != nil {
		return "", err
	}
	text := format.RecapMessage(res)
	if notice := format.TransitionNotice(res); notice != "" {
		text += "\n" + notice
	}
	return text, nil
}

package handlers

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/holidays"
)

// handleHolidays imports the configured public holiday calendar. Holidays
// already in the family calendar are skipped, so the command can be repeated.
func (h *Handlers) handleHolidays(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	if h.holidays == nil || len(h.holidays.Holidays) == 0 {
		h.sendMessage(msg.Chat.ID, "No public holiday calendar is configured.")
		return
	}

	existing, err := h.planner.Events(ctx, c.family.ID)
	if err != nil {
		log.Printf("Failed to read events of family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	missing := holidays.Missing(existing, h.holidays.ToEvents(c.family.ID))
	if len(missing) == 0 {
		h.sendMessage(msg.Chat.ID, "All public holidays are already in the calendar.")
		return
	}
	if err := h.planner.Commit(ctx, c.family.ID, missing); err != nil {
		log.Printf("Failed to import holidays for family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Imported %d public holidays from **%s**.", len(missing), h.holidays.Name))
}

package handlers

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/ics"
)

func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	events, err := h.planner.Events(ctx, c.family.ID)
	if err != nil {
		log.Printf("Failed to read events of family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	parents, err := h.store.ListParents(ctx, c.family.ID)
	if err != nil {
		log.Printf("Failed to list parents of family %d: %v", c.family.ID, err)
	}

	data, err := ics.NewExporter(c.family.Name, ics.ParentNamer(parents...)).Bytes(events)
	if err != nil {
		log.Printf("Failed to encode calendar for family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, "Could not build the calendar file, please try again later.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "custody.ics", Bytes: data})
	doc.Caption = "Import this file into any calendar app."
	if _, err := h.api.Send(doc); err != nil {
		log.Printf("Failed to send calendar file: %v", err)
	}
}

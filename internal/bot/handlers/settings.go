package handlers

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/models"
)

// handleSettings shows the recap settings menu
func (h *Handlers) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	settings, err := h.store.GetRecapSettings(ctx, c.parent.Ref, msg.Chat.ID)
	if err != nil {
		log.Printf("Failed to get recap settings: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your settings, please try again later.")
		return
	}
	h.sendWithKeyboard(msg.Chat.ID, settingsText(settings), settingsKeyboard())
}

// handleSettingsCallback handles "settings:<action>[:<arg>...]" callbacks.
func (h *Handlers) handleSettingsCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, parts []string) {
	if len(parts) == 0 {
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	if parts[0] == "close" {
		h.deleteMessage(chatID, messageID)
		return
	}

	p, err := h.store.ParentByTelegramID(ctx, callback.From.ID)
	if err != nil {
		h.answerCallbackWithAlert(callback.ID, "You are not part of a family yet.")
		return
	}
	settings, err := h.store.GetRecapSettings(ctx, p.Ref, chatID)
	if err != nil {
		log.Printf("Failed to get recap settings: %v", err)
		return
	}

	switch parts[0] {
	case "main":
	case "recap":
		settings.Enabled = !settings.Enabled
	case "transition":
		settings.TransitionNotice = !settings.TransitionNotice
	case "quiet":
		if len(parts) < 2 {
			h.editMessageWithKeyboard(chatID, messageID, quietText(settings), quietKeyboard())
			return
		}
		switch parts[1] {
		case "start":
			if len(parts) < 3 {
				h.editMessageWithKeyboard(chatID, messageID, "**Quiet hours start**", hourPicker("start", 20, 21, 22, 23, 0, 1))
				return
			}
			settings.QuietStart = parts[2] + ":00"
		case "end":
			if len(parts) < 3 {
				h.editMessageWithKeyboard(chatID, messageID, "**Quiet hours end**", hourPicker("end", 5, 6, 7, 8, 9, 10))
				return
			}
			settings.QuietEnd = parts[2] + ":00"
		case "off":
			settings.QuietStart = "00:00"
			settings.QuietEnd = "00:00"
		default:
			return
		}
	default:
		return
	}

	if parts[0] != "main" {
		settings.ChatID = chatID
		if err := h.store.SaveRecapSettings(ctx, settings); err != nil {
			log.Printf("Failed to save recap settings: %v", err)
			h.answerCallbackWithAlert(callback.ID, "Could not save the setting.")
			return
		}
	}
	if parts[0] == "quiet" {
		h.editMessageWithKeyboard(chatID, messageID, quietText(settings), quietKeyboard())
		return
	}
	h.editMessageWithKeyboard(chatID, messageID, settingsText(settings), settingsKeyboard())
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func quietRange(s *models.RecapSettings) string {
	if s.QuietStart == s.QuietEnd {
		return "off"
	}
	return s.QuietStart + " - " + s.QuietEnd
}

func settingsText(s *models.RecapSettings) string {
	return fmt.Sprintf("**Settings**\n\nDaily recap: %s\nHandover reminder: %s\nQuiet hours: %s",
		onOff(s.Enabled), onOff(s.TransitionNotice), quietRange(s))
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Daily recap", "settings:recap"),
			tgbotapi.NewInlineKeyboardButtonData("Handover reminder", "settings:transition"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Quiet hours", "settings:quiet"),
			tgbotapi.NewInlineKeyboardButtonData("Close", "settings:close"),
		),
	)
}

func quietText(s *models.RecapSettings) string {
	return fmt.Sprintf("**Quiet hours**\n\nNo recap is sent between %s.", quietRange(s))
}

func quietKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Start", "settings:quiet:start"),
			tgbotapi.NewInlineKeyboardButtonData("End", "settings:quiet:end"),
			tgbotapi.NewInlineKeyboardButtonData("Off", "settings:quiet:off"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back", "settings:main"),
		),
	)
}

// hourPicker lays out whole hours three per row. The hour is sent without
// minutes since callback data is split on ':'.
func hourPicker(which string, hours ...int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, hr := range hours {
		label := fmt.Sprintf("%02d:00", hr)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("settings:quiet:%s:%02d", which, hr)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Back", "settings:quiet")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/bot/handlers"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
}

// NewAPI authorizes against Telegram. The same client is shared by the bot
// and the recap scheduler.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return api, nil
}

func New(api *tgbotapi.BotAPI, h *handlers.Handlers) *Bot {
	return &Bot{api: api, handlers: h}
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	// Handle commands
	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}

	// Handle regular messages with AI
	b.handlers.HandleMessage(ctx, update.Message)
}

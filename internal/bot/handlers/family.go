package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/repository"
)

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// handleFamily creates a family when given a name, otherwise shows the
// caller's family.
func (h *Handlers) handleFamily(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
		if !ok {
			return
		}
		h.showFamily(ctx, msg.Chat.ID, c)
		return
	}

	f := &models.Family{Name: name, Timezone: h.timezone}
	p := &models.Parent{DisplayName: displayName(msg.From), TelegramID: msg.From.ID}
	err := h.store.CreateFamily(ctx, f, p)
	if errors.Is(err, repository.ErrAlreadyRegistered) {
		h.sendMessage(msg.Chat.ID, "You already belong to a family. Use /family to see it.")
		return
	}
	if err != nil {
		log.Printf("Failed to create family: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not create the family, please try again later.")
		return
	}
	h.ensureRecapSettings(ctx, p.Ref, msg.Chat.ID)

	h.debug("Family created", "family", f.ID, "parent", p.Ref)
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Family **%s** created. You are **%s**.\n\nAsk your co-parent to send `/join %d`.", f.Name, p.Role, f.ID))
}

func (h *Handlers) showFamily(ctx context.Context, chatID int64, c *caller) {
	parents, err := h.store.ListParents(ctx, c.family.ID)
	if err != nil {
		log.Printf("Failed to list parents: %v", err)
		h.sendMessage(chatID, userError(err))
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (id %d)\n", c.family.Name, c.family.ID)
	fmt.Fprintf(&sb, "Timezone: %s\n", c.family.Location())
	for _, p := range parents {
		you := ""
		if p.Ref == c.parent.Ref {
			you = " (you)"
		}
		fmt.Fprintf(&sb, "• **%s**: %s%s\n", p.Role, p.DisplayName, you)
	}
	if len(parents) < 2 {
		fmt.Fprintf(&sb, "\nWaiting for the co-parent: `/join %d`", c.family.ID)
	}
	h.sendMessage(chatID, sb.String())
}

func (h *Handlers) handleJoin(ctx context.Context, msg *tgbotapi.Message) {
	familyID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /join <family id>")
		return
	}

	p := &models.Parent{DisplayName: displayName(msg.From), TelegramID: msg.From.ID}
	err = h.store.JoinFamily(ctx, familyID, p)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.sendMessage(msg.Chat.ID, "No family with that id.")
		return
	case errors.Is(err, repository.ErrFamilyFull):
		h.sendMessage(msg.Chat.ID, "That family already has two parents.")
		return
	case errors.Is(err, repository.ErrAlreadyRegistered):
		h.sendMessage(msg.Chat.ID, "You already belong to a family. Use /family to see it.")
		return
	case err != nil:
		log.Printf("Failed to join family %d: %v", familyID, err)
		h.sendMessage(msg.Chat.ID, "Could not join the family, please try again later.")
		return
	}
	h.ensureRecapSettings(ctx, p.Ref, msg.Chat.ID)

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("You joined the family as **%s**. Set up the schedule with /plan.", p.Role))
}

func (h *Handlers) ensureRecapSettings(ctx context.Context, ref models.ParentRef, chatID int64) {
	if _, err := h.store.GetRecapSettings(ctx, ref, chatID); err != nil {
		log.Printf("Failed to create recap settings for %s: %v", ref, err)
	}
}

package handlers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/CoParent/internal/format"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/repository"
)

const childUsage = `Usage:
/child add <YYYY-MM-DD> <name>
/child set <id> <field> <value>
/child delete <id>`

// childFields maps the /child set field names to the profile fields. A
// value of "-" clears the field.
var childFields = map[string]func(c *models.Child, v string) error{
	"name": func(c *models.Child, v string) error { c.Name = v; return nil },
	"birth": func(c *models.Child, v string) error {
		d, err := models.ParseDate(v)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidChild, err)
		}
		c.BirthDate = d
		return nil
	},
	"school":      func(c *models.Child, v string) error { c.School.SchoolName = v; return nil },
	"class":       func(c *models.Child, v string) error { c.School.ClassName = v; return nil },
	"teacher":     func(c *models.Child, v string) error { c.School.TeacherName = v; return nil },
	"activities":  func(c *models.Child, v string) error { c.Activities = v; return nil },
	"allergies":   func(c *models.Child, v string) error { c.Medical.Allergies = v; return nil },
	"medications": func(c *models.Child, v string) error { c.Medical.Medications = v; return nil },
	"doctor":      func(c *models.Child, v string) error { c.Medical.DoctorName = v; return nil },
	"phone":       func(c *models.Child, v string) error { c.Medical.DoctorPhone = v; return nil },
}

func childFieldNames() string {
	names := make([]string, 0, len(childFields))
	for name := range childFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (h *Handlers) handleChildren(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	children, err := h.store.ListChildren(ctx, c.family.ID)
	if err != nil {
		log.Printf("Failed to list children of family %d: %v", c.family.ID, err)
		h.sendMessage(msg.Chat.ID, userError(err))
		return
	}
	h.sendMessage(msg.Chat.ID, format.ChildList(children, c.today(h.now())))
}

func (h *Handlers) handleChild(ctx context.Context, msg *tgbotapi.Message) {
	c, ok := h.resolveCaller(ctx, msg.Chat.ID, msg.From)
	if !ok {
		return
	}
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 2 {
		h.sendMessage(msg.Chat.ID, childUsage)
		return
	}

	switch fields[0] {
	case "add":
		if len(fields) < 3 {
			h.sendMessage(msg.Chat.ID, childUsage)
			return
		}
		h.addChild(ctx, msg.Chat.ID, c, fields[1], strings.Join(fields[2:], " "))
	case "set":
		if len(fields) < 4 {
			h.sendMessage(msg.Chat.ID, childUsage+"\n\nFields: "+childFieldNames())
			return
		}
		h.setChildField(ctx, msg.Chat.ID, c, fields[1], fields[2], strings.Join(fields[3:], " "))
	case "delete":
		h.confirmDeleteChild(ctx, msg.Chat.ID, msg.From.ID, c, fields[1])
	default:
		h.sendMessage(msg.Chat.ID, childUsage)
	}
}

func (h *Handlers) addChild(ctx context.Context, chatID int64, c *caller, birth, name string) {
	d, err := models.ParseDate(birth)
	if err != nil {
		h.sendMessage(chatID, childUsage)
		return
	}
	child := &models.Child{FamilyID: c.family.ID, Name: name, BirthDate: d}
	if err := h.store.CreateChild(ctx, child); err != nil {
		log.Printf("Failed to add child to family %d: %v", c.family.ID, err)
		h.sendMessage(chatID, userError(err))
		return
	}
	h.debug("Child added", "family", c.family.ID, "child", child.ID)
	h.sendMessage(chatID, "Child added:\n"+format.ChildCard(*child, c.today(h.now())))
}

func (h *Handlers) setChildField(ctx context.Context, chatID int64, c *caller, prefix, field, value string) {
	set, ok := childFields[strings.ToLower(field)]
	if !ok {
		h.sendMessage(chatID, fmt.Sprintf("Unknown field %q. Fields: %s", field, childFieldNames()))
		return
	}
	child, err := h.findChild(ctx, c.family.ID, prefix)
	if err != nil {
		h.sendMessage(chatID, userError(err))
		return
	}
	if value == "-" {
		value = ""
	}
	if err := set(child, value); err != nil {
		h.sendMessage(chatID, userError(err))
		return
	}
	if err := h.store.UpdateChild(ctx, child); err != nil {
		log.Printf("Failed to update child %s: %v", child.ID, err)
		h.sendMessage(chatID, userError(err))
		return
	}
	h.sendMessage(chatID, "Profile updated:\n"+format.ChildCard(*child, c.today(h.now())))
}

func (h *Handlers) confirmDeleteChild(ctx context.Context, chatID, userID int64, c *caller, prefix string) {
	child, err := h.findChild(ctx, c.family.ID, prefix)
	if err != nil {
		h.sendMessage(chatID, userError(err))
		return
	}
	h.requestConfirmation(chatID, userID, "Remove this child profile?\n"+format.ChildCard(*child, c.today(h.now())), &pendingAction{
		familyID:      c.family.ID,
		deleteChildID: child.ID,
	})
}

// findChild resolves an id or a unique id prefix.
func (h *Handlers) findChild(ctx context.Context, familyID int64, prefix string) (*models.Child, error) {
	children, err := h.store.ListChildren(ctx, familyID)
	if err != nil {
		return nil, err
	}
	var match *models.Child
	for i := range children {
		if children[i].ID == prefix {
			return &children[i], nil
		}
		if strings.HasPrefix(children[i].ID, prefix) {
			if match != nil {
				return nil, errAmbiguousID
			}
			match = &children[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: no child with id %q", repository.ErrNotFound, prefix)
	}
	return match, nil
}

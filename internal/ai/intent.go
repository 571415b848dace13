package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
)

type Action string

const (
	ActionGeneratePlan Action = "generate_plan"
	ActionRecap        Action = "recap"
	ActionCreateEvent  Action = "create_event"
	ActionListEvents   Action = "list_events"
	ActionDeleteEvent  Action = "delete_event"
	ActionUnknown      Action = "unknown"
)

func (a Action) Valid() bool {
	switch a {
	case ActionGeneratePlan, ActionRecap, ActionCreateEvent, ActionListEvents, ActionDeleteEvent, ActionUnknown:
		return true
	}
	return false
}

type Intent struct {
	Action             Action            `json:"action"`
	Parameters         map[string]string `json:"parameters"`
	Confidence         float64           `json:"confidence"`
	NeedsConfirmation  bool              `json:"needs_confirmation"`
	ConfirmationReason string            `json:"confirmation_reason"`
	// Multi-turn conversation fields
	NeedMoreInfo   bool   `json:"need_more_info"`
	FollowUpPrompt string `json:"follow_up_prompt"`
	AIMessage      string `json:"ai_message"`
	RawResponse    string `json:"-"`
}

// JSON Schema for structured output
var intentSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"action": {
			"type": "string",
			"enum": ["generate_plan", "recap", "create_event", "list_events", "delete_event", "unknown"],
			"description": "The action to perform"
		},
		"parameters": {
			"type": "object",
			"additionalProperties": {
				"type": "string"
			},
			"description": "Parameters for the action"
		},
		"confidence": {
			"type": "number",
			"minimum": 0,
			"maximum": 1,
			"description": "Confidence score between 0 and 1"
		},
		"needs_confirmation": {
			"type": "boolean",
			"description": "Whether this action requires user confirmation before execution"
		},
		"confirmation_reason": {
			"type": "string",
			"description": "Human-readable reason for why confirmation is needed"
		},
		"need_more_info": {
			"type": "boolean",
			"description": "Whether more information is needed from user to complete the action"
		},
		"follow_up_prompt": {
			"type": "string",
			"description": "The follow-up question to ask user when need_more_info is true"
		},
		"ai_message": {
			"type": "string",
			"description": "Friendly message to show user"
		}
	},
	"required": ["action", "confidence", "needs_confirmation", "need_more_info"],
	"additionalProperties": false
}`)

func (i *Intent) param(key string) string {
	return strings.TrimSpace(i.Parameters[key])
}

// PlanRequest converts a generate_plan intent into a generator request. The
// request is validated by the generator, not here.
func (i *Intent) PlanRequest(caller models.Role) (custody.Request, error) {
	var req custody.Request
	if i.Action != ActionGeneratePlan {
		return req, fmt.Errorf("intent is %s, not %s", i.Action, ActionGeneratePlan)
	}

	req.Pattern = custody.Pattern(i.param("pattern"))
	req.Variant = custody.Variant(i.param("variant"))

	start, err := models.ParseDate(i.param("start_date"))
	if err != nil {
		return req, fmt.Errorf("%w: start_date: %v", custody.ErrInvalidParameters, err)
	}
	req.StartDate = start

	who := i.param("starting_parent")
	if who == "" {
		who = "me"
	}
	role, err := models.ResolveRole(who, caller)
	if err != nil {
		return req, fmt.Errorf("%w: starting_parent: %v", custody.ErrInvalidParameters, err)
	}
	req.StartingParent = role

	months, err := strconv.Atoi(i.param("duration_months"))
	if err != nil {
		return req, fmt.Errorf("%w: duration_months: %v", custody.ErrInvalidParameters, err)
	}
	req.DurationMonths = months
	return req, nil
}

// Event converts a create_event intent into an event. End defaults to start.
func (i *Intent) Event(pair models.ParentPair, caller models.Role) (models.CalendarEvent, error) {
	var e models.CalendarEvent
	if i.Action != ActionCreateEvent {
		return e, fmt.Errorf("intent is %s, not %s", i.Action, ActionCreateEvent)
	}

	start, err := models.ParseDate(i.param("start_date"))
	if err != nil {
		return e, fmt.Errorf("%w: start_date: %v", models.ErrInvalidEvent, err)
	}
	end := start
	if s := i.param("end_date"); s != "" {
		if end, err = models.ParseDate(s); err != nil {
			return e, fmt.Errorf("%w: end_date: %v", models.ErrInvalidEvent, err)
		}
	}

	title := i.param("title")
	ref := ""
	tag := models.KindTag(i.param("type"))
	if tag == models.TagCustodyPrimary || tag == models.TagCustodyVacation {
		who := i.param("parent")
		if who == "" {
			who = "me"
		}
		role, err := models.ResolveRole(who, caller)
		if err != nil {
			return e, fmt.Errorf("%w: parent: %v", models.ErrInvalidEvent, err)
		}
		ref = string(pair.ByRole(role).Ref)
	}
	kind, err := models.KindFromTag(tag, ref, title)
	if err != nil {
		return e, err
	}

	e = models.CalendarEvent{
		Kind:        kind,
		Start:       start,
		End:         end,
		Title:       title,
		Description: i.param("description"),
	}
	return e, e.Validate()
}

// DateRange returns the optional list_events bounds.
func (i *Intent) DateRange() (start, end models.Date, ok bool) {
	s, err1 := models.ParseDate(i.param("start_date"))
	e, err2 := models.ParseDate(i.param("end_date"))
	if err1 != nil || err2 != nil {
		return start, end, false
	}
	return s, e, true
}

func (i *Intent) EventID() string {
	return i.param("id")
}

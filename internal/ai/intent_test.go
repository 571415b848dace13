package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/CoParent/internal/custody"
	"github.com/hray3182/CoParent/internal/models"
)

var pair = models.ParentPair{
	A: models.Parent{Ref: "alice", Role: models.RoleParentA},
	B: models.Parent{Ref: "bob", Role: models.RoleParentB},
}

func TestDecodeIntent(t *testing.T) {
	intent, err := decodeIntent(`{"action":"generate_plan","parameters":{"pattern":"alternating_week"},"confidence":0.9,"needs_confirmation":true,"need_more_info":false}`)
	require.NoError(t, err)
	assert.Equal(t, ActionGeneratePlan, intent.Action)
	assert.True(t, intent.NeedsConfirmation)
	assert.NotEmpty(t, intent.RawResponse)

	intent, err = decodeIntent(`{"action":"book_flight","confidence":0.2,"needs_confirmation":false,"need_more_info":false}`)
	require.NoError(t, err)
	assert.Equal(t, ActionUnknown, intent.Action)

	_, err = decodeIntent("not json")
	assert.Error(t, err)
}

func TestPlanRequest(t *testing.T) {
	intent := &Intent{
		Action: ActionGeneratePlan,
		Parameters: map[string]string{
			"pattern":         "alternating_week",
			"start_date":      "2024-01-01",
			"starting_parent": "other",
			"duration_months": "6",
		},
	}
	req, err := intent.PlanRequest(models.RoleParentA)
	require.NoError(t, err)
	assert.Equal(t, custody.PatternAlternatingWeek, req.Pattern)
	assert.Equal(t, models.RoleParentB, req.StartingParent)
	assert.Equal(t, 6, req.DurationMonths)
	assert.NoError(t, req.Validate())

	delete(intent.Parameters, "starting_parent")
	req, err = intent.PlanRequest(models.RoleParentB)
	require.NoError(t, err)
	assert.Equal(t, models.RoleParentB, req.StartingParent)

	intent.Parameters["duration_months"] = "six"
	_, err = intent.PlanRequest(models.RoleParentA)
	assert.ErrorIs(t, err, custody.ErrInvalidParameters)

	_, err = (&Intent{Action: ActionRecap}).PlanRequest(models.RoleParentA)
	assert.Error(t, err)
}

func TestEvent(t *testing.T) {
	intent := &Intent{
		Action: ActionCreateEvent,
		Parameters: map[string]string{
			"type":       "custody_vacation",
			"parent":     "me",
			"title":      "Ski trip",
			"start_date": "2024-02-10",
			"end_date":   "2024-02-17",
		},
	}
	e, err := intent.Event(pair, models.RoleParentB)
	require.NoError(t, err)
	assert.Equal(t, models.CustodyVacation{Parent: "bob"}, e.Kind)
	assert.Equal(t, 8, e.Days())

	special := &Intent{
		Action:     ActionCreateEvent,
		Parameters: map[string]string{"type": "special_event", "start_date": "2024-03-01"},
	}
	_, err = special.Event(pair, models.RoleParentA)
	assert.ErrorIs(t, err, models.ErrInvalidEvent)

	special.Parameters["title"] = "Dentist"
	e, err = special.Event(pair, models.RoleParentA)
	require.NoError(t, err)
	assert.Equal(t, e.Start, e.End)

	inverted := &Intent{
		Action:     ActionCreateEvent,
		Parameters: map[string]string{"type": "public_holiday", "start_date": "2024-03-05", "end_date": "2024-03-01"},
	}
	_, err = inverted.Event(pair, models.RoleParentA)
	assert.ErrorIs(t, err, models.ErrInvalidEvent)
}

func TestSystemPromptUsesFamilyDay(t *testing.T) {
	c := &Client{now: func() time.Time { return time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC) }}
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	assert.Contains(t, c.systemPrompt(paris), "Today is 2024-01-15 (Monday)")
	assert.Contains(t, c.systemPrompt(time.UTC), "Today is 2024-01-14 (Sunday)")
}

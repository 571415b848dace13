package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		now:    time.Now,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

// Message represents a chat message for multi-turn conversations
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPromptTemplate = `You are the CoParent assistant. Two separated parents share one custody calendar.
You turn what a parent writes into a structured intent.

Today is %s in the family timezone (%s).

Actions:
- generate_plan: create a custody schedule
- recap: who has the children today, when the next handover is
- create_event: add a single event
- list_events: list events (optionally between start_date and end_date)
- delete_event: delete an event by id
- unknown: anything else

Parameters (all values are strings):
- pattern: alternating_week, 2255 or custom (generate_plan)
- variant: four_segment or weekly_split, only for 2255 when the parent asks for a 2/2/3 split
- start_date, end_date: YYYY-MM-DD
- starting_parent: "me", "other", "Parent A" or "Parent B" (who has the children first)
- duration_months: whole number between 1 and 24
- type: custody_primary, custody_vacation, special_event or public_holiday (create_event)
- parent: "me", "other", "Parent A" or "Parent B" (custody events)
- title, description
- id: event id (delete_event)

Rules:
1. Resolve relative dates ("next Monday", "tomorrow") against today and output YYYY-MM-DD.
2. "Every other week" and "week on week off" mean alternating_week. "2-2-5-5" means 2255.
3. generate_plan and delete_event always need needs_confirmation = true.
4. If a required parameter is missing, set need_more_info = true and ask for it in follow_up_prompt.
5. ai_message is a short friendly reply shown to the parent.`

func (c *Client) systemPrompt(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	now := c.now().In(loc)
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 (Monday)"), loc.String())
}

// ParseIntent parses a single message.
func (c *Client) ParseIntent(ctx context.Context, userMessage string, loc *time.Location) (*Intent, error) {
	return c.ParseIntentWithHistory(ctx, []Message{{Role: openai.ChatMessageRoleUser, Content: userMessage}}, loc)
}

// ParseIntentWithHistory parses intent using conversation history for multi-turn conversations
func (c *Client) ParseIntentWithHistory(ctx context.Context, history []Message, loc *time.Location) (*Intent, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt(loc),
		},
	}
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "intent",
				Schema: intentSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	return decodeIntent(resp.Choices[0].Message.Content)
}

func decodeIntent(content string) (*Intent, error) {
	intent := &Intent{RawResponse: content}
	if err := json.Unmarshal([]byte(content), intent); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if !intent.Action.Valid() {
		intent.Action = ActionUnknown
	}
	return intent, nil
}

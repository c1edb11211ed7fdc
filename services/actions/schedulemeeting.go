package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
	"github.com/clariohq/clario/pkg/llm"
)

type meetingDetails struct {
	Topic string `json:"topic"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

var meetingSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"topic": {Type: jsonschema.String, Description: "what the meeting is about"},
		"date":  {Type: jsonschema.String, Description: "requested date, ISO or free text"},
		"time":  {Type: jsonschema.String, Description: "requested time of day"},
	},
	Required: []string{"topic"},
}

// scheduleMeeting records a meeting request as a contact note. With a model
// configured it extracts topic and timing from the recent thread; without
// one it files a bare request for a human to pick up.
func (s *service) scheduleMeeting(ctx context.Context, params types.ActionParams) (string, error) {
	contactID, err := requireID(params, "contactId")
	if err != nil {
		return "", err
	}
	convID, err := requireID(params, "conversationId")
	if err != nil {
		return "", err
	}

	details := meetingDetails{Topic: "follow-up"}
	if s.LLM != nil {
		msgs, err := s.Store.ListRecentMessages(ctx, convID, 10)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, m := range msgs {
			fmt.Fprintf(&b, "%s: %s\n", m.Direction, m.Content)
		}
		guidance := "Extract the requested meeting from this conversation:\n" + b.String()
		if err := llm.GenerateTypedJSON(ctx, s.LLM, guidance, s.Model, meetingSchema, &details); err != nil {
			return "", fmt.Errorf("%w: extracting meeting details: %v", types.ErrCapability, err)
		}
	}

	content := fmt.Sprintf("Meeting requested: %s", details.Topic)
	if details.Date != "" {
		content += fmt.Sprintf(" on %s", details.Date)
	}
	if details.Time != "" {
		content += fmt.Sprintf(" at %s", details.Time)
	}
	if err := s.Store.CreateNote(ctx, &models.ContactNote{
		ContactID: contactID,
		Content:   content,
		Author:    "scheduler",
	}); err != nil {
		return "", err
	}
	return content, nil
}

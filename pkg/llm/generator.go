package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/clariohq/clario/core/types"
	models "github.com/clariohq/clario/dbmodels"
)

// DefaultModel serves whenever neither the agent nor the deployment names
// one.
const DefaultModel = "gpt-4o-mini"

// costUnits estimates billing units for a completion. One unit per started
// block of 100 completion tokens, minimum one.
func costUnits(usage openai.Usage) int {
	units := (usage.CompletionTokens + 99) / 100
	if units < 1 {
		units = 1
	}
	return units
}

// Generator produces agent replies from a composed prompt and history.
type Generator struct {
	client Client
}

func NewGenerator(client Client) *Generator {
	return &Generator{client: client}
}

// Generate runs one chat completion for the agent. The system prompt comes
// in fully composed; history carries prior turns oldest first.
func (g *Generator) Generate(ctx context.Context, agent *models.Agent, systemPrompt string, history []models.ConversationMessage, userMessage string) (*types.GenerationResult, error) {
	model := agent.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Direction == models.DirectionOutbound {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generation: %v", types.ErrCapability, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: generation returned no choices", types.ErrCapability)
	}

	return &types.GenerationResult{
		Text:      resp.Choices[0].Message.Content,
		CostUnits: costUnits(resp.Usage),
		Model:     model,
	}, nil
}

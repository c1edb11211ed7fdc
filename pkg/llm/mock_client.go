package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// MockClient satisfies Client for tests.
type MockClient struct {
	CreateChatCompletionFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func (m *MockClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if m.CreateChatCompletionFunc != nil {
		return m.CreateChatCompletionFunc(ctx, req)
	}
	return openai.ChatCompletionResponse{}, nil
}

// CannedClient always replies with the same text. Handy in pipeline tests.
func CannedClient(text string, completionTokens int) *MockClient {
	return &MockClient{
		CreateChatCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{
				Model: req.Model,
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}},
				},
				Usage: openai.Usage{CompletionTokens: completionTokens},
			}, nil
		},
	}
}

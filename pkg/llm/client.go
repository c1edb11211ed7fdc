// Package llm wraps the OpenAI-compatible chat API behind the small surface
// the pipeline and action handlers need.
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Client is the slice of the OpenAI client we use. Tests substitute a mock.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds an OpenAI-compatible client. URL may point at any
// compatible endpoint; timeout is a duration string, defaulting to 150s.
func NewClient(apiKey, url, timeout string) *openai.Client {
	if apiKey == "" {
		apiKey = "sk-xxx"
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = url

	dur, err := time.ParseDuration(timeout)
	if err != nil {
		dur = 150 * time.Second
	}

	config.HTTPClient = &http.Client{
		Timeout: dur,
	}
	return openai.NewClientWithConfig(config)
}

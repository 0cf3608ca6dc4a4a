// Package llm wraps chat completion behind a one-method interface so the
// answer path can be tested without an API key.
package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Completer turns a prompt into a completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIClient implements Completer over the OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a chat client. The API key falls back to
// OPENAI_API_KEY; baseURL overrides the endpoint for compatible servers.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends the prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

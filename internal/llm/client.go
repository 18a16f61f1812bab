// Package llm wraps the OpenAI-compatible chat completion API behind a
// single Complete call. The pipeline only ever needs "prompt in, text out";
// timeouts and cancellation arrive through the context.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Completer is the collaborator boundary the logging pipeline depends on.
// Tests substitute a stub; production uses *Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls a hosted chat-completion API. BaseURL allows any
// OpenAI-compatible host (Groq, OpenRouter, a local gateway).
type Client struct {
	client     openai.Client
	model      string
	strictJSON bool
}

// Compile-time check: *Client satisfies Completer.
var _ Completer = (*Client)(nil)

// New creates a Client. When strictJSON is set, requests use a JSON-schema
// response format derived from the parse types, which stops most fenced or
// prose-wrapped completions at the source; the parser still handles both.
func New(apiKey, baseURL, model string, strictJSON bool) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client:     openai.NewClient(opts...),
		model:      model,
		strictJSON: strictJSON,
	}
}

// Complete sends the prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: c.model,
	}
	if c.strictJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: workoutLogSchemaParam},
		}
	}

	chat, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return chat.Choices[0].Message.Content, nil
}

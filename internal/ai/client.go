// Package ai wraps the OpenAI-compatible chat completion API used for note generation.
package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/chartnote/internal/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var (
	ErrMissingCredential = errors.NewSentinel("missing API credential")
	ErrEmptyResponse     = errors.NewSentinel("model returned no choices")
)

const MaxTokens = 4096

type Config struct {
	APIKey string
	// BaseURL overrides the official endpoint, e.g. for a compatible gateway or a test server.
	BaseURL string
}

// Schema describes a JSON object response the model must produce.
type Schema struct {
	Name        string
	Description string
	Definition  jsonschema.Definition
}

type Client struct {
	client *openai.Client
	logger *slog.Logger
}

// NewClient returns a client. With an empty API key the client is still usable but every call
// fails with ErrMissingCredential without reaching the network.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	c := &Client{logger: logger.With(slog.String("source", "ai.Client"))}
	if cfg.APIKey == "" {
		return c
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	c.client = openai.NewClientWithConfig(clientConfig)
	return c
}

// CompleteJSON runs a single completion constrained to schema and returns the raw JSON text.
func (c *Client) CompleteJSON(ctx context.Context, model, prompt string, schema Schema) (string, error) {
	definition := schema.Definition
	return c.complete(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     model,
		MaxTokens: MaxTokens,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        schema.Name,
				Description: schema.Description,
				Schema:      &definition,
				Strict:      true,
			},
		},
	})
}

// Complete runs a single unconstrained completion and returns the text.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     model,
		MaxTokens: MaxTokens,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
	})
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.client == nil {
		return "", ErrMissingCredential
	}
	completion, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", req.Model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyResponse, "create chat completion", slog.String("model", req.Model))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "chat completion finished",
		slog.String("model", req.Model),
		slog.Int("prompt_tokens", completion.Usage.PromptTokens),
		slog.Int("completion_tokens", completion.Usage.CompletionTokens))
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

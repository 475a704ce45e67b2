// Package openai implements llm.Provider on top of the OpenAI chat API.
package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/symlog/symlog-go/pkg/llm"
)

// Client is an OpenAI-backed text-generation provider.
type Client struct {
	client *openai.Client
	model  string
}

// Config configures the OpenAI provider.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string

	// Model is the chat model name. Defaults to "gpt-4o-mini".
	Model string

	// BaseURL overrides the API endpoint for compatible gateways.
	BaseURL string
}

// NewClient creates an OpenAI provider from the given configuration.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: openai.NewClientWithConfig(conf),
		model:  model,
	}, nil
}

// Generate produces text for a single user prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMessages produces text from a conversation history.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the OpenAI SDK holds no persistent resources.
func (c *Client) Close() error {
	return nil
}

// Package chatgpt adapts the OpenAI chat completion API to the summarizer.
package chatgpt

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

type Config struct {
	APIKey       string
	BaseURL      string // optional, for compatible endpoints
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

type Client struct {
	client *openai.Client
	cfg    Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

func (c *Client) Name() string {
	return "openai"
}

// Complete returns the first choice's message. No choices yields "".
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.cfg.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

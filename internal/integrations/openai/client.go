package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"twin-agent/internal/domain"
)

// completionAPI is the minimal subset of the go-openai client used by the
// provider. Defined here for testability.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req gopenai.ChatCompletionRequest) (gopenai.ChatCompletionResponse, error)
}

// Client generates replies through an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	api   completionAPI
	model string
}

type config struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*config)

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("openai: model must not be empty")
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	clientCfg := gopenai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.baseURL, "/")
	}
	if cfg.httpClient != nil {
		clientCfg.HTTPClient = cfg.httpClient
	}
	return &Client{
		api:   gopenai.NewClientWithConfig(clientCfg),
		model: model,
	}, nil
}

// Generate sends the prompt to the chat completions endpoint and returns
// the first choice's text.
func (c *Client) Generate(ctx context.Context, prompt []domain.Message) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(prompt []domain.Message) []gopenai.ChatCompletionMessage {
	messages := make([]gopenai.ChatCompletionMessage, 0, len(prompt))
	for _, m := range prompt {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return messages
}

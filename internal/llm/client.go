// ABOUTME: Completion client for the Grok chat API (OpenAI-compatible schema)
// ABOUTME: One attempt per request, no retries; errors translate to tagged kinds
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/foresight/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultMaxTokens bounds replies when a command does not set its own limit.
const DefaultMaxTokens = 1500

// Request carries everything needed for one completion call. The client is
// a pure request → result function: it never touches the history store, so
// the caller owns the append-only-on-success branch.
type Request struct {
	SystemPrompt string
	History      []models.Turn
	UserMessage  string
	MaxTokens    int
}

// ClientConfig holds configuration for the completion client
type ClientConfig struct {
	APIKey      string
	Endpoint    string // API base URL, e.g. https://api.x.ai/v1
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Client wraps the OpenAI-compatible API client
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewClient creates a completion client for the configured endpoint
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("completion API endpoint is required")
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.BaseURL = cfg.Endpoint

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

// Complete issues exactly one call to the completion endpoint. The message
// list is the system prompt, then the history in original order, then the
// new user turn. Non-200 replies come back as *UpstreamError; transport
// failures and unparseable bodies come back wrapping ErrConnection.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrConnection)
	}

	return resp.Choices[0].Message.Content, nil
}

// translateError maps go-openai errors onto the relay's tagged kinds.
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode}
	}

	return fmt.Errorf("%w: %v", ErrConnection, err)
}

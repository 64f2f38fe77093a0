// Package llm adapts an OpenAI-compatible chat completion API to shared.Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// OpenAIClient implements shared.Completer with go-openai
type OpenAIClient struct {
	client         *openai.Client
	model          string
	assistantModel string
	maxTokens      int
	temperature    float32
	timeout        time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

// Option configures an OpenAIClient
type Option func(*OpenAIClient)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *OpenAIClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the transport; the per-call timeout still applies
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAIClient) {
		c.httpClient = hc
	}
}

// NewOpenAIClient creates a client from configuration
func NewOpenAIClient(cfg config.LLMConfig, opts ...Option) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	c := &OpenAIClient{
		model:          cfg.Model,
		assistantModel: cfg.AssistantModel,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		timeout:        cfg.Timeout,
		logger:         zap.NewNop(),
	}
	if c.assistantModel == "" {
		c.assistantModel = c.model
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if c.httpClient != nil {
		clientCfg.HTTPClient = c.httpClient
	}
	c.client = openai.NewClientWithConfig(clientCfg)
	return c, nil
}

// Complete sends one chat completion request bounded by the configured timeout.
// Transport and API failures are reported as SERVICE_UNAVAILABLE.
func (c *OpenAIClient) Complete(ctx context.Context, purpose shared.CompletionPurpose, messages []shared.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.modelFor(purpose),
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("Chat completion failed",
			zap.String("purpose", string(purpose)),
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", shared.ErrServiceUnavailable.WithMessage(fmt.Sprintf("Language model request failed: %s", describe(err)))
	}
	if len(resp.Choices) == 0 {
		return "", shared.ErrServiceUnavailable.WithMessage("Language model returned no choices")
	}

	c.logger.Debug("Chat completion finished",
		zap.String("purpose", string(purpose)),
		zap.String("model", req.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) modelFor(purpose shared.CompletionPurpose) string {
	if purpose == shared.PurposeAssistant {
		return c.assistantModel
	}
	return c.model
}

func toOpenAIMessages(messages []shared.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case shared.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case shared.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// describe keeps the API error message and drops request details
func describe(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return "unreachable"
}

// DisabledCompleter is used when no model is configured
type DisabledCompleter struct{}

// Complete always fails with SERVICE_UNAVAILABLE
func (DisabledCompleter) Complete(context.Context, shared.CompletionPurpose, []shared.ChatMessage) (string, error) {
	return "", shared.ErrServiceUnavailable.WithMessage("Language model is not configured")
}

// New returns the OpenAI client when enabled, otherwise a DisabledCompleter
func New(cfg config.LLMConfig, opts ...Option) (shared.Completer, error) {
	if !cfg.Enabled {
		return DisabledCompleter{}, nil
	}
	return NewOpenAIClient(cfg, opts...)
}

var (
	_ shared.Completer = (*OpenAIClient)(nil)
	_ shared.Completer = DisabledCompleter{}
)

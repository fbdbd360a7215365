// Package openai is the chat-completion transport. Both supported providers
// (groq, openai) speak the OpenAI wire protocol, so one client covers the
// provider table: a provider key maps to a base endpoint, a default model
// and an optional process-wide fallback key.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/metrics"
)

// Provider holds one chat-completion provider's settings.
type Provider struct {
	BaseURL string
	Model   string
	APIKey  string // process-wide fallback when the caller supplied none
}

// Client asks LLM providers for chat completions.
type Client struct {
	providers map[string]Provider
	logger    *zap.Logger
}

// NewClient creates an LLM client over a provider table.
func NewClient(providers map[string]Provider, logger *zap.Logger) *Client {
	return &Client{providers: providers, logger: logger}
}

// Ask sends an ordered message list to the provider and returns the model's
// text, trimmed. The caller's key wins over the provider fallback. One
// attempt, no retry; retried writes downstream would not be idempotent.
func (c *Client) Ask(ctx context.Context, messages []domain.Message, provider, apiKey string) (string, error) {
	p, ok := c.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: unknown provider %q", domain.ErrLLMRequest, provider)
	}

	key := apiKey
	if key == "" {
		key = p.APIKey
	}
	if key == "" {
		return "", fmt.Errorf("%w: no API key for provider %q", domain.ErrConfigNotFound, provider)
	}

	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = p.BaseURL
	client := openai.NewClientWithConfig(clientCfg)

	req := openai.ChatCompletionRequest{
		Model:    p.Model,
		Messages: toChatMessages(messages),
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(provider, p.Model, "error").Inc()
		c.logger.Warn("llm request failed",
			zap.String("provider", provider),
			zap.String("model", p.Model),
			zap.Error(err),
		)
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(provider, p.Model, "error").Inc()
		return "", fmt.Errorf("%w: empty completion response", domain.ErrLLMRequest)
	}

	metrics.LLMRequestsTotal.WithLabelValues(provider, p.Model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(provider, p.Model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(provider, p.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(provider, p.Model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies the default provider answers ListModels (free endpoint).
// Providers with no fallback key cannot be checked; that is not a failure.
func (c *Client) HealthCheck(ctx context.Context) error {
	for name, p := range c.providers {
		if p.APIKey == "" {
			continue
		}
		clientCfg := openai.DefaultConfig(p.APIKey)
		clientCfg.BaseURL = p.BaseURL
		if _, err := openai.NewClientWithConfig(clientCfg).ListModels(ctx); err != nil {
			return fmt.Errorf("list models (%s): %w", name, err)
		}
		return nil
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// parseAPIError preserves upstream status and body for diagnostics.
// Everything is wrapped with domain.ErrLLMRequest for correct 502 mapping.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewLLMRequestError(reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewLLMRequestError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: %w", domain.ErrLLMRequest, err)
}

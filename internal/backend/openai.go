package backend

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/logging"
)

// OpenAIClient calls an OpenAI-compatible chat completion endpoint.
// Ollama serves one at <host>/v1, so the same local model can be reached
// through either client.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewOpenAI creates a client. An empty baseURL uses the public OpenAI API.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    logging.OrNop(logger),
	}
}

// Generate sends prompt as a single user message and returns the trimmed reply.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		Stop:        opts.Stop,
	})
	if err != nil {
		c.log.Debug("chat completion failed", "model", c.model, "duration", time.Since(start), "error", err)
		return "", errors.NewBackendUnavailable(statusOf(err), err.Error(), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewBackendUnavailable(http.StatusOK, "response contained no choices", nil)
	}

	c.log.Debug("chat completion ok", "model", c.model, "duration", time.Since(start), "total_tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// statusOf extracts the HTTP status from a go-openai error, or 0 for transport errors.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

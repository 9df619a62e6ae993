package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/logging"
)

// generatePath is the Ollama completion endpoint, relative to the base URL.
const generatePath = "/api/generate"

// maxErrorBody bounds how much of a failed response body is kept for the error message.
const maxErrorBody = 512

// OllamaClient calls a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	apiURL string
	model  string
	http   *http.Client
	log    *slog.Logger
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewOllama creates a client for the Ollama server at baseURL.
func NewOllama(baseURL, model string, timeout time.Duration, logger *slog.Logger) *OllamaClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		apiURL: strings.TrimRight(baseURL, "/") + generatePath,
		model:  model,
		http:   &http.Client{Timeout: timeout},
		log:    logging.OrNop(logger),
	}
}

// Generate sends prompt to the backend and returns the trimmed completion.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	stop := opts.Stop
	if stop == nil {
		stop = []string{}
	}
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
			TopP:        opts.TopP,
			Stop:        stop,
		},
	})
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("marshal generate request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewBackendUnavailable(0, err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("generate failed", "model", c.model, "duration", time.Since(start), "error", err)
		return "", errors.NewBackendUnavailable(0, err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("Ollama API error: %d", resp.StatusCode)
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg += ": " + s
		}
		c.log.Debug("generate rejected", "model", c.model, "status", resp.StatusCode, "duration", time.Since(start))
		return "", errors.NewBackendUnavailable(resp.StatusCode, msg, nil)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.NewBackendUnavailable(resp.StatusCode, fmt.Sprintf("decode response: %v", err), err)
	}
	if out.Response == nil {
		return "", errors.NewBackendUnavailable(resp.StatusCode, "response field missing", nil)
	}

	c.log.Debug("generate ok", "model", c.model, "duration", time.Since(start), "chars", len(*out.Response))
	return strings.TrimSpace(*out.Response), nil
}

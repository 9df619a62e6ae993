package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"syscall"

	"github.com/hpungsan/panelist/internal/config"
	"github.com/hpungsan/panelist/internal/errors"
)

// Options tunes a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
}

// DefaultOptions returns the options the interviewer uses unless configured otherwise.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.9,
		Stop:        []string{"\n\n", "Human:", "Assistant:"},
	}
}

// OptionsFromConfig builds Options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.MaxTokens > 0 {
		opts.MaxTokens = cfg.MaxTokens
	}
	opts.Temperature = cfg.TemperatureValue()
	opts.TopP = cfg.TopPValue()
	if len(cfg.Stop) > 0 {
		opts.Stop = append([]string(nil), cfg.Stop...)
	}
	return opts
}

// Generator turns a prompt into a completion.
// Implementations make exactly one attempt and return BACKEND_UNAVAILABLE on
// any failure; they never substitute placeholder text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// New creates the Generator selected by cfg.Provider.
func New(cfg *config.Config, logger *slog.Logger) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.ProviderOllama:
		return NewOllama(cfg.BackendURL(), cfg.Model, cfg.Timeout(), logger), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.BackendURL(), cfg.APIKey, cfg.Model, cfg.Timeout(), logger), nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown generation provider: %s", cfg.Provider))
	}
}

// IsFatal reports whether err means the backend is not reachable at all
// (connection refused). Callers stop a batch on fatal errors instead of
// moving on to the next question.
func IsFatal(err error) bool {
	return stderrors.Is(err, syscall.ECONNREFUSED)
}

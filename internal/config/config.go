package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// DefaultOllamaURL is the backend root used for ollama when base_url is unset.
const DefaultOllamaURL = "http://localhost:11434"

// Config holds application configuration.
type Config struct {
	// Provider selects the generation backend: "ollama" or "openai".
	// "openai" talks to any OpenAI-compatible chat endpoint (including Ollama's /v1).
	Provider string `json:"provider,omitempty"`

	// BaseURL is the backend root. For ollama the client appends /api/generate.
	// Empty means the provider default; see BackendURL.
	BaseURL string `json:"base_url,omitempty"`

	// Model is the model name passed to the backend.
	Model string `json:"model,omitempty"`

	// APIKey is only sent by the openai provider.
	APIKey string `json:"api_key,omitempty"`

	// MaxTokens caps the completion length (num_predict for ollama).
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature and TopP are pointers so an explicit 0 survives Merge.
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`

	// Stop replaces (does not merge with) the lower layer's stop sequences.
	Stop []string `json:"stop,omitempty"`

	// TimeoutSeconds bounds a single generation call.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// OutputDir is where transcript files are written. Relative paths resolve
	// against the working directory.
	OutputDir string `json:"output_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// envOverrides maps environment variables onto Config fields.
// Empty values leave the file configuration untouched.
type envOverrides struct {
	Provider       string `env:"PANELIST_PROVIDER"`
	BaseURL        string `env:"PANELIST_BASE_URL"`
	Model          string `env:"PANELIST_MODEL"`
	APIKey         string `env:"PANELIST_API_KEY"`
	MaxTokens      int    `env:"PANELIST_MAX_TOKENS"`
	TimeoutSeconds int    `env:"PANELIST_TIMEOUT_SECONDS"`
	OutputDir      string `env:"PANELIST_OUTPUT_DIR"`
	LogLevel       string `env:"PANELIST_LOG_LEVEL"`
	LogFormat      string `env:"PANELIST_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	temperature := 0.7
	topP := 0.9
	return &Config{
		Provider:       ProviderOllama,
		Model:          "phi3.5",
		MaxTokens:      512,
		Temperature:    &temperature,
		TopP:           &topP,
		Stop:           []string{"\n\n", "Human:", "Assistant:"},
		TimeoutSeconds: 60,
		OutputDir:      "interview_results",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// BackendURL returns the base URL for the configured provider. An unset
// base_url resolves to DefaultOllamaURL for ollama and to "" for openai,
// which the openai client treats as the public API.
func (c *Config) BackendURL() string {
	if u := strings.TrimSpace(c.BaseURL); u != "" {
		return u
	}
	if strings.EqualFold(strings.TrimSpace(c.Provider), ProviderOpenAI) {
		return ""
	}
	return DefaultOllamaURL
}

// DefaultBaseDir returns $PANELIST_HOME, or ~/.panelist when unset.
func DefaultBaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("PANELIST_HOME")); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".panelist"), nil
}

// Load loads configuration from baseDir/config.json and applies environment
// overrides. Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.panelist.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return ApplyEnv(cfg, env.Options{})
}

// LoadWithRepo loads configuration from both global (~/.panelist) and project
// (.panelist) directories. The project config is found by walking upward from
// startDir. Project config takes precedence for scalar values; disabled_tools
// are merged (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return ApplyEnv(Merge(Merge(DefaultConfig(), global), repo), env.Options{})
}

// ApplyEnv overlays PANELIST_* environment variables on cfg.
// opts.Environment lets tests supply variables without touching the process env.
func ApplyEnv(cfg *Config, opts env.Options) (*Config, error) {
	var o envOverrides
	if err := env.Parse(&o, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return Merge(cfg, &Config{
		Provider:       strings.TrimSpace(o.Provider),
		BaseURL:        strings.TrimSpace(o.BaseURL),
		Model:          strings.TrimSpace(o.Model),
		APIKey:         o.APIKey,
		MaxTokens:      o.MaxTokens,
		TimeoutSeconds: o.TimeoutSeconds,
		OutputDir:      strings.TrimSpace(o.OutputDir),
		LogLevel:       strings.TrimSpace(o.LogLevel),
		LogFormat:      strings.TrimSpace(o.LogFormat),
	}), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .panelist/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".panelist", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence when set; disabled_tools are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Provider:       pickString(overlay.Provider, base.Provider),
		BaseURL:        pickString(overlay.BaseURL, base.BaseURL),
		Model:          pickString(overlay.Model, base.Model),
		APIKey:         pickString(overlay.APIKey, base.APIKey),
		MaxTokens:      pickInt(overlay.MaxTokens, base.MaxTokens),
		TimeoutSeconds: pickInt(overlay.TimeoutSeconds, base.TimeoutSeconds),
		OutputDir:      pickString(overlay.OutputDir, base.OutputDir),
		LogLevel:       pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:      pickString(overlay.LogFormat, base.LogFormat),
	}

	result.Temperature = base.Temperature
	if overlay.Temperature != nil {
		result.Temperature = overlay.Temperature
	}
	result.TopP = base.TopP
	if overlay.TopP != nil {
		result.TopP = overlay.TopP
	}

	result.Stop = base.Stop
	if len(overlay.Stop) > 0 {
		result.Stop = overlay.Stop
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TemperatureValue returns the configured temperature, or 0.7 if unset.
func (c *Config) TemperatureValue() float64 {
	if c.Temperature == nil {
		return 0.7
	}
	return *c.Temperature
}

// TopPValue returns the configured top_p, or 0.9 if unset.
func (c *Config) TopPValue() float64 {
	if c.TopP == nil {
		return 0.9
	}
	return *c.TopP
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

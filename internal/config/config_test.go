package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Model != def.Model {
		t.Fatalf("Model = %q, want %q", cfg.Model, def.Model)
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", cfg.BaseURL)
	}
	if cfg.BackendURL() != DefaultOllamaURL {
		t.Errorf("BackendURL() = %q, want %q", cfg.BackendURL(), DefaultOllamaURL)
	}
	if cfg.OutputDir != "interview_results" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "interview_results")
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", cfg.Timeout())
	}
	if len(cfg.Stop) != 3 {
		t.Errorf("Stop = %v, want 3 default stop sequences", cfg.Stop)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"model": "llama3.2", "max_tokens": 256, "temperature": 0}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model != "llama3.2" {
		t.Errorf("Model = %q, want %q", cfg.Model, "llama3.2")
	}
	if cfg.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", cfg.MaxTokens)
	}
	// Explicit zero temperature must survive the merge
	if cfg.TemperatureValue() != 0 {
		t.Errorf("TemperatureValue() = %v, want 0", cfg.TemperatureValue())
	}
	// Untouched values keep their defaults
	if cfg.TopPValue() != 0.9 {
		t.Errorf("TopPValue() = %v, want 0.9", cfg.TopPValue())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_StopReplacesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"stop": ["Interviewer:"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Stop) != 1 || cfg.Stop[0] != "Interviewer:" {
		t.Errorf("Stop = %v, want [Interviewer:]", cfg.Stop)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["interview_run", "response_rate"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "interview_run" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "interview_run")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"model": "phi3", "disabled_tools": ["interview_run"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	projectDir := filepath.Join(repoRoot, ".panelist")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"model": "mistral", "disabled_tools": ["response_rate"]}`
	if err := os.WriteFile(filepath.Join(projectDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.Model != "mistral" {
		t.Errorf("Model = %q, want %q (project override)", cfg.Model, "mistral")
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderOllama)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	cfg, err := ApplyEnv(DefaultConfig(), env.Options{Environment: map[string]string{
		"PANELIST_PROVIDER":        "openai",
		"PANELIST_BASE_URL":        "http://localhost:11434/v1",
		"PANELIST_MODEL":           "llama3.2",
		"PANELIST_TIMEOUT_SECONDS": "5",
		"PANELIST_OUTPUT_DIR":      "/tmp/out",
	}})
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderOpenAI)
	}
	if cfg.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Model != "llama3.2" {
		t.Errorf("Model = %q, want %q", cfg.Model, "llama3.2")
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "/tmp/out")
	}
	// Unset variables leave defaults alone
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.MaxTokens)
	}
}

func TestApplyEnv_InvalidInt(t *testing.T) {
	_, err := ApplyEnv(DefaultConfig(), env.Options{Environment: map[string]string{
		"PANELIST_MAX_TOKENS": "lots",
	}})
	if err == nil {
		t.Fatal("ApplyEnv() expected error for non-numeric max tokens")
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"a", " b "}}
	overlay := &Config{DisabledTools: []string{"b", "c", ""}}

	result := Merge(base, overlay)

	want := []string{"a", "b", "c"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}

func TestDefaultBaseDir_EnvOverride(t *testing.T) {
	t.Setenv("PANELIST_HOME", "/srv/panelist")

	dir, err := DefaultBaseDir()
	if err != nil {
		t.Fatalf("DefaultBaseDir() error = %v", err)
	}
	if dir != "/srv/panelist" {
		t.Errorf("DefaultBaseDir() = %q, want %q", dir, "/srv/panelist")
	}
}

func TestBackendURL_DependsOnProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		baseURL  string
		want     string
	}{
		{"ollama default", ProviderOllama, "", DefaultOllamaURL},
		{"empty provider", "", "", DefaultOllamaURL},
		{"openai default is public API", ProviderOpenAI, "", ""},
		{"openai upper case", "OpenAI", "", ""},
		{"openai explicit", ProviderOpenAI, "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"ollama explicit", ProviderOllama, " http://gpu:11434 ", "http://gpu:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = tt.provider
			cfg.BaseURL = tt.baseURL
			if got := cfg.BackendURL(); got != tt.want {
				t.Errorf("BackendURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

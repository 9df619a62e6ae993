package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/config"
	"github.com/hpungsan/panelist/internal/db"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/logging"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/transcript"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *countingGenerator) Generate(_ context.Context, prompt string, _ backend.Options) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "Rating (1-10):") {
		return "Rating: 8", nil
	}
	return fmt.Sprintf("answer %d", g.calls), nil
}

// setupTestEnv wires an env against a temporary database and output dir.
func setupTestEnv(t *testing.T, gen backend.Generator, stdin string) *env {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(tmpDir, "interview_results")

	tick := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	return &env{
		cfg:    cfg,
		db:     database,
		logger: logging.Nop(),
		stdin:  strings.NewReader(stdin),
		deps: &ops.Deps{
			Registry:  persona.Default(),
			Generator: gen,
			Store:     transcript.NewStore(cfg.OutputDir),
			DB:        database,
			Now: func() time.Time {
				tick = tick.Add(time.Second)
				return tick
			},
		},
	}
}

// runApp runs the CLI with args and returns stdout and the error.
func runApp(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newCLIApp(e, &stdout, &stderr).Run(append([]string{"panelist"}, args...))
	return stdout.String(), err
}

func TestCLITest(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")

	out, err := runApp(t, e, "test")
	if err != nil {
		t.Fatalf("test command failed: %v", err)
	}
	for _, want := range []string{
		"=== QUICK TEST MODE ===",
		"Testing with Tech Early Adopter persona and 3 sample questions",
		"Q: What's your favorite type of product to buy?\nA: answer 1",
		"Test completed successfully!",
		"interview_tech_early_adopter_20240203_040507.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLITest_JSON(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")

	out, err := runApp(t, e, "test", "--json")
	if err != nil {
		t.Fatalf("test command failed: %v", err)
	}
	var result ops.RunOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if result.Completed != 1 || result.Questions != 3 {
		t.Errorf("result = %+v", result)
	}
}

func TestCLITest_BackendDown(t *testing.T) {
	gen := &countingGenerator{err: errors.NewBackendUnavailable(0, "dial tcp: connection refused", syscall.ECONNREFUSED)}
	e := setupTestEnv(t, gen, "")

	_, err := runApp(t, e, "test")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	exitErr, ok := err.(cli.ExitCoder)
	if !ok || exitErr.ExitCode() != 1 {
		t.Fatalf("err = %v, want exit code 1", err)
	}
	if !strings.Contains(err.Error(), "Test failed with error:") {
		t.Errorf("err = %q", err.Error())
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestCLIListAndShow(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")
	if _, err := runApp(t, e, "test"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := runApp(t, e, "list", "--persona", persona.TechEarlyAdopter)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list ops.ListOutput
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("failed to parse list output: %v\nOutput: %s", err, out)
	}
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}
	id := list.Items[0].ID

	out, err = runApp(t, e, "show", id)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var fetched ops.FetchOutput
	if err := json.Unmarshal([]byte(out), &fetched); err != nil {
		t.Fatalf("failed to parse show output: %v", err)
	}
	if fetched.Record == nil || fetched.Record.ResearchTopic != "Quick Test" {
		t.Errorf("record = %+v", fetched.Record)
	}

	out, err = runApp(t, e, "show", "--markdown", id)
	if err != nil {
		t.Fatalf("show --markdown failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Interview: Tech Early Adopter") {
		t.Errorf("markdown = %q", out)
	}

	out, err = runApp(t, e, "show", "--html", id)
	if err != nil {
		t.Fatalf("show --html failed: %v", err)
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Errorf("html page missing doctype")
	}

	out, err = runApp(t, e, "list", "--topic", "nothing here")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, `"items": []`) {
		t.Errorf("expected empty items, got %s", out)
	}
}

func TestCLIPersonasAndTopics(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")

	out, err := runApp(t, e, "personas")
	if err != nil {
		t.Fatalf("personas failed: %v", err)
	}
	if !strings.Contains(out, persona.BudgetConsciousFamily) {
		t.Errorf("personas output missing budget_conscious_family")
	}

	out, err = runApp(t, e, "topics")
	if err != nil {
		t.Fatalf("topics failed: %v", err)
	}
	if !strings.Contains(out, "Technology Products") || !strings.Contains(out, "pricing_sensitivity") {
		t.Errorf("topics output = %s", out)
	}
}

func TestCLIRate(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")

	out, err := runApp(t, e, "rate", "I", "love", "gadgets")
	if err != nil {
		t.Fatalf("rate failed: %v", err)
	}
	var r ops.RateOutput
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if r.Rating != 8 || r.Text != "I love gadgets" {
		t.Errorf("rate = %+v", r)
	}
}

func TestCLIRate_FromStdin(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "  piped statement \n")

	out, err := runApp(t, e, "rate")
	if err != nil {
		t.Fatalf("rate failed: %v", err)
	}
	if !strings.Contains(out, `"text": "piped statement"`) {
		t.Errorf("output = %s", out)
	}
}

func TestCLIInteractive(t *testing.T) {
	gen := &countingGenerator{}
	// Topic 1, no edits, persona 3, confirm.
	e := setupTestEnv(t, gen, "1\nn\n3\ny\n")

	out, err := runApp(t, e)
	if err != nil {
		t.Fatalf("interactive run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "SIMULATION COMPLETE") {
		t.Errorf("missing summary:\n%s", out)
	}
	if gen.calls != 10 {
		t.Errorf("generator calls = %d, want 10", gen.calls)
	}
}

func TestCLIInteractive_EOF(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "1\n")

	_, err := runApp(t, e)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("err = %v, want interrupted", err)
	}
}

func TestCLIErrorHandling(t *testing.T) {
	e := setupTestEnv(t, &countingGenerator{}, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "show not found", args: []string{"show", "01HZZZZZZZZZZZZZZZZZZZZZZZ"}, want: "[NOT_FOUND]"},
		{name: "show without id", args: []string{"show"}, want: "[INVALID_REQUEST]"},
		{name: "show conflicting formats", args: []string{"show", "--html", "--markdown", "x"}, want: "[INVALID_REQUEST]"},
		{name: "rate without text", args: []string{"rate"}, want: "[INVALID_REQUEST]"},
		{name: "ui bad port", args: []string{"ui", "--port", "0"}, want: "[INVALID_REQUEST]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, e, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("err = %q, want prefix %q", err.Error(), tt.want)
			}
		})
	}
}

func TestRun_UnknownOption(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"panelist", "--bogus"}, strings.NewReader(""), &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	want := "Unknown option: --bogus\nUse 'test', 'help', or no argument for full simulation\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"help", "--help", "-h"} {
		t.Run(arg, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{"panelist", arg}, strings.NewReader(""), &stdout, &stderr)
			if code != 0 {
				t.Errorf("exit code = %d, want 0 (stderr %q)", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "panelist test") {
				t.Errorf("help output missing usage:\n%s", stdout.String())
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"panelist", "--version"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), Version) {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestIsKnownArg(t *testing.T) {
	tests := []struct {
		arg  string
		want bool
	}{
		{"test", true},
		{"help", true},
		{"list", true},
		{"mcp", true},
		{"ui", true},
		{"--help", true},
		{"-v", true},
		{"store", false},
		{"--unknown", false},
		{"Test", false},
	}
	for _, tt := range tests {
		if got := isKnownArg(tt.arg); got != tt.want {
			t.Errorf("isKnownArg(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"panelist"}, false},
		{[]string{"panelist", "help"}, true},
		{[]string{"panelist", "-h"}, true},
		{[]string{"panelist", "--version"}, true},
		{[]string{"panelist", "test"}, false},
	}
	for _, tt := range tests {
		if got := isHelpOrVersion(tt.args); got != tt.want {
			t.Errorf("isHelpOrVersion(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	if code := exitCode(&stderr, nil); code != 0 {
		t.Errorf("exitCode(nil) = %d", code)
	}
	if code := exitCode(&stderr, cli.Exit("[NOT_FOUND] transcript not found: x", 1)); code != 1 {
		t.Errorf("exitCode(exit) = %d", code)
	}
	if !strings.Contains(stderr.String(), "[NOT_FOUND]") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/interview"
	"github.com/hpungsan/panelist/internal/persona"
)

type echoGenerator struct {
	calls  int
	failAt int
}

func (g *echoGenerator) Generate(_ context.Context, _ string, _ backend.Options) (string, error) {
	g.calls++
	if g.calls == g.failAt {
		return "", errors.NewBackendUnavailable(500, "boom", nil)
	}
	return fmt.Sprintf("reply %d", g.calls), nil
}

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

func newSession(t *testing.T, gen backend.Generator, topic string) *interview.Session {
	t.Helper()
	s, err := interview.New(persona.Default(), persona.TechEarlyAdopter, topic, gen,
		interview.WithClock(func() time.Time { return fixedTime }))
	if err != nil {
		t.Fatalf("interview.New() error = %v", err)
	}
	return s
}

func TestFileName(t *testing.T) {
	got := FileName("luxury_consumer", fixedTime)
	want := "interview_luxury_consumer_20240309_140507.json"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestNewStore_DefaultDir(t *testing.T) {
	if got := NewStore("").Dir; got != DefaultDir {
		t.Errorf("NewStore(\"\").Dir = %q, want %q", got, DefaultDir)
	}
}

func TestSave_QuickTestTranscript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	st := NewStore(dir)

	s := newSession(t, &echoGenerator{}, "Quick Test")
	questions := []string{
		"What's your favorite type of product to buy?",
		"How do you make purchasing decisions?",
		"What influences your brand choices?",
	}
	if _, err := s.RunAll(context.Background(), questions); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	path, err := st.Save(s)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "interview_tech_early_adopter_20240309_140507.json"); path != want {
		t.Errorf("Save() path = %q, want %q", path, want)
	}
	if s.State() != interview.StateCompleted {
		t.Errorf("State() = %q, want completed", s.State())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("transcript is not JSON: %v", err)
	}
	for _, key := range []string{"persona_type", "research_topic", "conversation_history", "results"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("transcript missing key %q", key)
		}
	}
	if _, ok := doc["failed_questions"]; ok {
		t.Error("failed_questions should be omitted when empty")
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.PersonaType != persona.TechEarlyAdopter || rec.ResearchTopic != "Quick Test" {
		t.Errorf("Load() = %+v", rec)
	}
	if len(rec.Results) != 3 || len(rec.ConversationHistory) != 3 {
		t.Errorf("results = %d, history = %d, want 3 and 3", len(rec.Results), len(rec.ConversationHistory))
	}
	if rec.ConversationHistory[0].Question != questions[0] {
		t.Errorf("history[0].Question = %q, want %q", rec.ConversationHistory[0].Question, questions[0])
	}
}

func TestSave_TwiceIsIdempotent(t *testing.T) {
	st := NewStore(t.TempDir())
	s := newSession(t, &echoGenerator{}, "Brand Perception")
	if _, err := s.Ask(context.Background(), "Which brands do you trust?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	p1, err := st.Save(s)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	first, _ := os.ReadFile(p1)

	p2, err := st.Save(s)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	second, _ := os.ReadFile(p2)

	if p1 != p2 {
		t.Errorf("paths differ: %q vs %q", p1, p2)
	}
	if string(first) != string(second) {
		t.Error("second save wrote different bytes")
	}

	entries, _ := os.ReadDir(st.Dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestSave_EmptySession(t *testing.T) {
	st := NewStore(t.TempDir())
	s := newSession(t, &echoGenerator{}, "Nothing")

	path, err := st.Save(s)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"conversation_history": []`) {
		t.Errorf("empty history should serialize as []: %s", raw)
	}
}

func TestSave_RecordsFailedQuestions(t *testing.T) {
	st := NewStore(t.TempDir())
	s := newSession(t, &echoGenerator{failAt: 2}, "Pricing")
	_, _ = s.RunAll(context.Background(), []string{"A?", "B?", "C?"})

	path, err := st.Save(s)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rec.FailedQuestions) != 1 || rec.FailedQuestions[0].Question != "B?" {
		t.Errorf("FailedQuestions = %+v", rec.FailedQuestions)
	}
	if len(rec.Results) != 2 {
		t.Errorf("Results len = %d, want 2", len(rec.Results))
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	if !errors.Is(err, errors.ErrInternal) {
		t.Errorf("Load(bad) error = %v, want INTERNAL", err)
	}
}

package ops

import (
	"context"
	"os"
	"testing"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/persona"
)

func TestFetchTranscript(t *testing.T) {
	deps, database := newTestDeps(t, &fakeGenerator{reply: "I research everything."})
	ctx := context.Background()

	o := deps.RunPersona(ctx, persona.TechEarlyAdopter, "Technology Products", []string{"How do you shop?"})

	out, err := FetchTranscript(ctx, database, o.SessionID)
	if err != nil {
		t.Fatalf("FetchTranscript() error = %v", err)
	}
	if out.ID != o.SessionID || out.Path != o.Path {
		t.Errorf("FetchTranscript() row = %+v", out.Transcript)
	}
	if out.Record.ResearchTopic != "Technology Products" {
		t.Errorf("ResearchTopic = %q", out.Record.ResearchTopic)
	}
	if got := out.Record.Results["How do you shop?"]; got != "I research everything." {
		t.Errorf("Results = %q", got)
	}
}

func TestFetchTranscript_Errors(t *testing.T) {
	deps, database := newTestDeps(t, &fakeGenerator{})
	ctx := context.Background()

	if _, err := FetchTranscript(ctx, database, " "); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty id error = %v, want INVALID_REQUEST", err)
	}
	if _, err := FetchTranscript(ctx, database, "01NOPE"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown id error = %v, want NOT_FOUND", err)
	}

	o := deps.RunPersona(ctx, persona.TechEarlyAdopter, "T", []string{"A?"})
	if err := os.Remove(o.Path); err != nil {
		t.Fatal(err)
	}
	if _, err := FetchTranscript(ctx, database, o.SessionID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("removed file error = %v, want NOT_FOUND", err)
	}
}

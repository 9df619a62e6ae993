package ops

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/db"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/transcript"
)

// fakeGenerator answers every prompt unless the question text appears in fail.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
	reply string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, _ backend.Options) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	for q, err := range g.fail {
		if strings.Contains(prompt, "Interview Question: "+q+"\n") {
			return "", err
		}
	}
	if g.reply != "" {
		return g.reply, nil
	}
	return fmt.Sprintf("answer %d", g.calls), nil
}

var testClock = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

// newTestDeps wires deps against a temp dir. Each call advances the clock a
// second so transcript names never collide.
func newTestDeps(t *testing.T, gen backend.Generator) (*Deps, *sql.DB) {
	t.Helper()
	base := t.TempDir()
	database, err := db.Init(base)
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	tick := testClock
	return &Deps{
		Registry:  persona.Default(),
		Generator: gen,
		Store:     transcript.NewStore(filepath.Join(base, "interview_results")),
		DB:        database,
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	}, database
}

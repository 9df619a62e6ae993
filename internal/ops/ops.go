package ops

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/logging"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/transcript"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Deps bundles what interview operations need. DB may be nil, in which case
// transcripts are saved to disk but not indexed.
type Deps struct {
	Registry  *persona.Registry
	Generator backend.Generator
	Options   backend.Options
	Store     *transcript.Store
	DB        *sql.DB
	Logger    *slog.Logger
	Now       func() time.Time
}

func (d *Deps) logger() *slog.Logger {
	return logging.OrNop(d.Logger)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// options returns the configured generation options, or the defaults when
// none were set.
func (d *Deps) options() backend.Options {
	if d.Options.MaxTokens == 0 {
		return backend.DefaultOptions()
	}
	return d.Options
}

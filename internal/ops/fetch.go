package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/panelist/internal/db"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/transcript"
)

// FetchOutput is an index row together with the transcript it points to.
type FetchOutput struct {
	db.Transcript
	Record *transcript.Record `json:"record"`
}

// FetchTranscript loads a transcript by session ID. A row whose file has been
// removed is NOT_FOUND.
func FetchTranscript(ctx context.Context, database *sql.DB, id string) (*FetchOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	row, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	rec, err := transcript.Load(row.Path)
	if err != nil {
		return nil, err
	}
	return &FetchOutput{Transcript: *row, Record: rec}, nil
}

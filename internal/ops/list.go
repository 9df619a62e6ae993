package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/panelist/internal/db"
)

// ListInput contains parameters for the ListTranscripts operation.
type ListInput struct {
	Persona string // optional filter
	Topic   string // optional filter, case-insensitive
	Limit   int    // default: 20, max: 100
	Offset  int    // default: 0
}

// ListOutput contains the result of the ListTranscripts operation.
type ListOutput struct {
	Items      []db.Transcript `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// ListTranscripts returns indexed transcripts, newest first.
func ListTranscripts(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	filter := db.Filter{
		PersonaID: strings.TrimSpace(input.Persona),
		Topic:     strings.TrimSpace(input.Topic),
	}
	items, total, err := db.List(ctx, database, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []db.Transcript{}
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

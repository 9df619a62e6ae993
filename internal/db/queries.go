package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/panelist/internal/errors"
)

// Transcript is one row of the transcript index. Timestamps are Unix seconds.
type Transcript struct {
	ID            string `json:"id"`
	PersonaID     string `json:"persona_id"`
	Topic         string `json:"topic"`
	Path          string `json:"path"`
	QuestionCount int    `json:"question_count"`
	AnsweredCount int    `json:"answered_count"`
	FailedCount   int    `json:"failed_count"`
	CreatedAt     int64  `json:"created_at"`
	SavedAt       int64  `json:"saved_at"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	PersonaID string
	Topic     string
}

const selectColumns = `
	SELECT id, persona_id, topic, path, question_count,
		answered_count, failed_count, created_at, saved_at
	FROM transcripts
`

// Upsert indexes t, replacing any existing row with the same ID.
func Upsert(ctx context.Context, db *sql.DB, t *Transcript) error {
	query := `
		INSERT INTO transcripts (
			id, persona_id, topic, path, question_count,
			answered_count, failed_count, created_at, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			persona_id = excluded.persona_id,
			topic = excluded.topic,
			path = excluded.path,
			question_count = excluded.question_count,
			answered_count = excluded.answered_count,
			failed_count = excluded.failed_count,
			saved_at = excluded.saved_at
	`

	_, err := db.ExecContext(ctx, query,
		t.ID, t.PersonaID, t.Topic, t.Path, t.QuestionCount,
		t.AnsweredCount, t.FailedCount, t.CreatedAt, t.SavedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves an index row by session ULID.
func GetByID(ctx context.Context, db *sql.DB, id string) (*Transcript, error) {
	row := db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	t, err := scanTranscript(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// List returns matching rows newest first, plus the total number of matches
// ignoring limit and offset.
func List(ctx context.Context, db *sql.DB, f Filter, limit, offset int) ([]Transcript, int, error) {
	where, args := f.clause()

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transcripts"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := selectColumns + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []Transcript{}
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// clause builds the WHERE clause for f. Topic matches case-insensitively.
func (f Filter) clause() (string, []any) {
	var conds []string
	var args []any
	if f.PersonaID != "" {
		conds = append(conds, "persona_id = ?")
		args = append(args, f.PersonaID)
	}
	if f.Topic != "" {
		conds = append(conds, "topic = ? COLLATE NOCASE")
		args = append(args, f.Topic)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscript(s scanner) (*Transcript, error) {
	var t Transcript
	err := s.Scan(
		&t.ID, &t.PersonaID, &t.Topic, &t.Path, &t.QuestionCount,
		&t.AnsweredCount, &t.FailedCount, &t.CreatedAt, &t.SavedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

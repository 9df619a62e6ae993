package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/errors"
)

// RateOutput contains the result of the Rate operation.
type RateOutput struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Rate asks the model how poignant text is on a 1-10 scale.
func Rate(ctx context.Context, deps *Deps, text string) (*RateOutput, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	if deps == nil || deps.Generator == nil {
		return nil, errors.NewInvalidRequest("generator is required")
	}

	rating, err := backend.ScoreImportance(ctx, deps.Generator, text)
	if err != nil {
		return nil, err
	}
	return &RateOutput{Text: text, Rating: rating}, nil
}

package backend

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultRating is returned by ExtractRating when no rating is found.
const DefaultRating = 5

// ratingRegex matches a standalone 1-10. The first match wins.
var ratingRegex = regexp.MustCompile(`\b([1-9]|10)\b`)

// ExtractRating pulls the first standalone number between 1 and 10 out of text,
// or returns DefaultRating. It is intentionally naive: "11" and "0" are skipped,
// and "1 in 10" yields 1.
func ExtractRating(text string) int {
	m := ratingRegex.FindStringSubmatch(text)
	if m == nil {
		return DefaultRating
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultRating
	}
	return n
}

const importancePrompt = `On the scale of 1 to 10, where 1 is purely mundane (e.g., brushing teeth, making bed) and 10 is extremely poignant (e.g., a break up, college acceptance), rate the likely poignancy of the following piece of memory.

Memory: %s

Rating (1-10):`

// ScoreImportance asks the model to rate how poignant description is on a
// 1-10 scale and parses the answer with ExtractRating.
func ScoreImportance(ctx context.Context, g Generator, description string) (int, error) {
	opts := DefaultOptions()
	opts.MaxTokens = 50
	opts.Temperature = 0.3

	resp, err := g.Generate(ctx, fmt.Sprintf(importancePrompt, description), opts)
	if err != nil {
		return 0, err
	}
	return ExtractRating(resp), nil
}

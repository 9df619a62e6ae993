package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/catalog"
	"github.com/hpungsan/panelist/internal/db"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/interview"
	"github.com/hpungsan/panelist/internal/persona"
)

// Outcome statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// RunInput contains parameters for the RunInterviews operation.
type RunInput struct {
	Topic      string
	Questions  []string
	PersonaIDs []string
}

// PersonaOutcome is the result of interviewing one persona.
type PersonaOutcome struct {
	PersonaID string            `json:"persona_id"`
	SessionID string            `json:"session_id,omitempty"`
	Status    string            `json:"status"`
	Answered  int               `json:"answered"`
	Failed    int               `json:"failed"`
	Path      string            `json:"path,omitempty"`
	Results   map[string]string `json:"results,omitempty"`
	Error     string            `json:"error,omitempty"`

	Err error `json:"-"`
}

// RunOutput contains the result of the RunInterviews operation.
type RunOutput struct {
	Topic     string           `json:"topic"`
	Questions int              `json:"questions"`
	Outcomes  []PersonaOutcome `json:"outcomes"`
	Completed int              `json:"completed"`
	Partial   int              `json:"partial"`
	Failed    int              `json:"failed"`
}

// RunInterviews interviews each persona in turn with the same questions.
// One persona failing never stops the batch; its outcome carries the error.
func RunInterviews(ctx context.Context, deps *Deps, input RunInput) (*RunOutput, error) {
	topic, questions, err := validateRun(input.Topic, input.Questions)
	if err != nil {
		return nil, err
	}
	if len(input.PersonaIDs) == 0 {
		return nil, errors.NewInvalidRequest("at least one persona is required")
	}

	out := &RunOutput{
		Topic:     topic,
		Questions: len(questions),
		Outcomes:  make([]PersonaOutcome, 0, len(input.PersonaIDs)),
	}
	for _, id := range input.PersonaIDs {
		if ctx.Err() != nil {
			out.add(PersonaOutcome{PersonaID: id, Status: StatusFailed, Err: errors.NewCancelled("interview"), Error: "interview cancelled"})
			continue
		}
		out.add(deps.RunPersona(ctx, id, topic, questions))
	}
	return out, nil
}

func (o *RunOutput) add(p PersonaOutcome) {
	o.Outcomes = append(o.Outcomes, p)
	switch p.Status {
	case StatusCompleted:
		o.Completed++
	case StatusPartial:
		o.Partial++
	default:
		o.Failed++
	}
}

// RunPersona interviews a single persona, saves the transcript and indexes it.
// It never returns an error directly; failures are reported in the outcome.
func (d *Deps) RunPersona(ctx context.Context, personaID, topic string, questions []string) PersonaOutcome {
	log := d.logger().With("persona", personaID, "topic", topic)
	outcome := PersonaOutcome{PersonaID: personaID}

	if d.Registry == nil || d.Generator == nil || d.Store == nil {
		return outcome.fail(errors.NewInvalidRequest("interview dependencies not configured"))
	}

	s, err := interview.New(d.Registry, personaID, topic, d.Generator,
		interview.WithOptions(d.options()),
		interview.WithClock(d.now))
	if err != nil {
		log.Warn("interview not started", "error", err)
		return outcome.fail(err)
	}
	outcome.SessionID = s.ID()

	results, runErr := s.RunAll(ctx, questions)
	outcome.Results = results
	// Results is keyed by question text; History counts repeated questions too.
	outcome.Answered = len(s.History())
	outcome.Failed = len(s.Failures())
	if runErr != nil {
		log.Warn("interview had failures", "session", s.ID(), "answered", outcome.Answered, "failed", outcome.Failed, "error", runErr)
	}

	path, err := d.Store.Save(s)
	if err != nil {
		log.Warn("transcript not saved", "session", s.ID(), "error", err)
		return outcome.fail(err)
	}
	outcome.Path = path

	if d.DB != nil {
		row := &db.Transcript{
			ID:            s.ID(),
			PersonaID:     s.PersonaID(),
			Topic:         topic,
			Path:          path,
			QuestionCount: len(questions),
			AnsweredCount: outcome.Answered,
			FailedCount:   outcome.Failed,
			CreatedAt:     s.CreatedAt().Unix(),
			SavedAt:       d.now().Unix(),
		}
		if err := db.Upsert(ctx, d.DB, row); err != nil {
			// The file on disk is the record; a missing index row only hides it from list.
			log.Warn("transcript not indexed", "session", s.ID(), "error", err)
		}
	}

	switch {
	case runErr == nil && outcome.Failed == 0:
		outcome.Status = StatusCompleted
	case outcome.Answered > 0:
		outcome.Status = StatusPartial
	default:
		outcome.Status = StatusFailed
	}
	if runErr != nil {
		outcome.Err = runErr
		outcome.Error = firstLine(runErr.Error())
	}

	log.Debug("interview finished", "session", s.ID(), "status", outcome.Status, "path", path)
	return outcome
}

func (o PersonaOutcome) fail(err error) PersonaOutcome {
	o.Status = StatusFailed
	o.Err = err
	o.Error = firstLine(err.Error())
	return o
}

// QuickTest runs the three-question smoke test against tech_early_adopter.
func QuickTest(ctx context.Context, deps *Deps) (*RunOutput, error) {
	return RunInterviews(ctx, deps, RunInput{
		Topic:      catalog.QuickTestTopic,
		Questions:  catalog.QuickTestQuestions(),
		PersonaIDs: []string{persona.TechEarlyAdopter},
	})
}

// IsFatal reports whether an outcome failed because the backend is unreachable.
func (o PersonaOutcome) IsFatal() bool {
	return backend.IsFatal(o.Err)
}

func validateRun(topic string, questions []string) (string, []string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", nil, errors.NewInvalidRequest("topic is required")
	}
	if len(questions) == 0 {
		return "", nil, errors.NewInvalidRequest("at least one question is required")
	}
	cleaned := make([]string, 0, len(questions))
	for i, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			return "", nil, errors.NewInvalidRequest(fmt.Sprintf("question %d is empty", i+1))
		}
		cleaned = append(cleaned, q)
	}
	return topic, cleaned, nil
}

// firstLine trims joined error text to its first line for summaries.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

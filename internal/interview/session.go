package interview

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/persona"
)

// ContextWindowSize is how many of the most recent exchanges are replayed in
// each new prompt. Older exchanges stay in the history but leave the prompt.
const ContextWindowSize = 3

// State is the lifecycle position of a Session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Exchange is one question and the persona's answer.
type Exchange struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Failure records a question whose generation failed. The question never
// enters the history.
type Failure struct {
	Question string `json:"question"`
	Error    string `json:"error"`
}

// Session interviews one persona about one topic. It is single-use and not
// safe for concurrent use.
type Session struct {
	id        string
	profile   persona.Profile
	context   string // rendered persona block, computed once
	topic     string
	createdAt time.Time
	gen       backend.Generator
	opts      backend.Options

	state    State
	history  []Exchange
	results  map[string]string
	failures []Failure
}

// Option configures a Session.
type Option func(*Session)

// WithOptions overrides the generation options used for every question.
func WithOptions(opts backend.Options) Option {
	return func(s *Session) { s.opts = opts }
}

// WithClock fixes the session creation time.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.createdAt = now() }
}

// New starts a session for personaID. The persona is resolved through
// registry; an unknown ID fails with UNKNOWN_PERSONA.
func New(registry *persona.Registry, personaID, topic string, gen backend.Generator, opts ...Option) (*Session, error) {
	if registry == nil {
		return nil, errors.NewInvalidRequest("persona registry is required")
	}
	if gen == nil {
		return nil, errors.NewInvalidRequest("generator is required")
	}
	profile, err := registry.ProfileFor(personaID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		profile:   profile,
		context:   persona.RenderPrompt(profile),
		topic:     topic,
		createdAt: time.Now(),
		gen:       gen,
		opts:      backend.DefaultOptions(),
		state:     StateNotStarted,
		results:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	id, err := newID(s.createdAt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s.id = id
	return s, nil
}

// Ask sends one question and appends the exchange on success.
// On failure nothing is appended and a GENERATION_FAILED error wrapping the
// backend error is returned.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	if s.state == StateCompleted {
		return "", errors.NewSessionCompleted(s.id)
	}
	if strings.TrimSpace(question) == "" {
		return "", errors.NewInvalidRequest("question must not be empty")
	}

	s.state = StateInProgress

	resp, err := s.gen.Generate(ctx, s.BuildPrompt(question), s.opts)
	if err != nil {
		s.failures = append(s.failures, Failure{Question: question, Error: err.Error()})
		return "", errors.NewGenerationFailed(question, err)
	}

	resp = strings.TrimSpace(resp)
	s.history = append(s.history, Exchange{Question: question, Response: resp})
	s.results[question] = resp
	return resp, nil
}

// RunAll asks every question in order and returns the answered ones keyed by
// question text. A failed question is skipped; the run stops early only when
// the backend refused the connection or ctx is done. The returned error joins
// every failure and is nil when all questions were answered.
func (s *Session) RunAll(ctx context.Context, questions []string) (map[string]string, error) {
	var errs []error
	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, errors.NewCancelled("interview"))
			break
		}
		if _, err := s.Ask(ctx, q); err != nil {
			errs = append(errs, err)
			if backend.IsFatal(err) || errors.Is(err, errors.ErrSessionCompleted) {
				break
			}
		}
	}
	return s.Results(), stderrors.Join(errs...)
}

// Finalize marks the session completed. Repeated calls are no-ops.
func (s *Session) Finalize() {
	s.state = StateCompleted
}

// BuildPrompt assembles the full prompt for question from the persona block,
// the topic, the recent history window and the question itself.
func (s *Session) BuildPrompt(question string) string {
	var b strings.Builder
	b.WriteString(s.context)
	b.WriteString("\n\nResearch Topic: ")
	b.WriteString(s.topic)
	b.WriteString("\n\nPrevious Conversation:\n")
	b.WriteString(FormatWindow(s.Window()))
	b.WriteString("\n\nInterview Question: ")
	b.WriteString(question)
	b.WriteString("\nParticipant:")
	return b.String()
}

// Window returns the exchanges the next prompt will include, oldest first.
func (s *Session) Window() []Exchange {
	start := max(len(s.history)-ContextWindowSize, 0)
	return append([]Exchange(nil), s.history[start:]...)
}

// FormatWindow renders exchanges as "Q: ...\nA: ..." lines.
func FormatWindow(exchanges []Exchange) string {
	parts := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		parts = append(parts, "Q: "+e.Question+"\nA: "+e.Response)
	}
	return strings.Join(parts, "\n")
}

// ID returns the session ULID.
func (s *Session) ID() string { return s.id }

// PersonaID returns the interviewed persona's ID.
func (s *Session) PersonaID() string { return s.profile.ID }

// Profile returns the interviewed persona.
func (s *Session) Profile() persona.Profile { return s.profile }

// Topic returns the research topic.
func (s *Session) Topic() string { return s.topic }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// History returns all exchanges in the order they were asked.
func (s *Session) History() []Exchange {
	return append([]Exchange(nil), s.history...)
}

// Results returns the question → response map for answered questions.
func (s *Session) Results() map[string]string {
	out := make(map[string]string, len(s.results))
	for q, r := range s.results {
		out[q] = r
	}
	return out
}

// Failures returns questions whose generation failed, in order.
func (s *Session) Failures() []Failure {
	return append([]Failure(nil), s.failures...)
}

// newID generates a ULID stamped with t.
func newID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

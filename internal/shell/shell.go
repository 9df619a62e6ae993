// Package shell runs the interactive interview flow: pick a topic, review and
// edit questions, choose personas, then interview them one at a time.
package shell

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
)

const rule = "======================================================================"

// Runner interviews one persona. *ops.Deps satisfies it.
type Runner interface {
	RunPersona(ctx context.Context, personaID, topic string, questions []string) ops.PersonaOutcome
}

// Result is what an interactive run produced.
type Result struct {
	Topic     string
	Questions []string
	Outcomes  []ops.PersonaOutcome
	Cancelled bool // the user declined at the confirmation prompt
}

// Shell is a line-oriented interactive session.
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	registry *persona.Registry
	runner   Runner
	style    styler

	model     string
	outputDir string
}

// Option configures a Shell.
type Option func(*Shell)

// WithColor forces styled output on or off.
func WithColor(on bool) Option {
	return func(s *Shell) { s.style.color = on }
}

// WithModel names the model in the banner.
func WithModel(model string) Option {
	return func(s *Shell) { s.model = model }
}

// WithOutputDir names the transcript directory in the summary.
func WithOutputDir(dir string) Option {
	return func(s *Shell) { s.outputDir = dir }
}

// New creates a Shell reading answers from in and writing prompts to out.
// Styling is enabled when out is a terminal.
func New(in io.Reader, out io.Writer, registry *persona.Registry, runner Runner, opts ...Option) *Shell {
	s := &Shell{
		in:        bufio.NewScanner(in),
		out:       out,
		registry:  registry,
		runner:    runner,
		style:     styler{color: IsTerminal(out)},
		outputDir: "interview_results",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives the whole flow. End of input returns CANCELLED.
func (s *Shell) Run(ctx context.Context) (*Result, error) {
	s.banner()

	topic, questions, err := s.selectTopic()
	if err != nil {
		return nil, err
	}

	edit, err := s.reviewQuestions(questions)
	if err != nil {
		return nil, err
	}
	if edit {
		if questions, err = s.editQuestions(questions); err != nil {
			return nil, err
		}
	}
	if len(questions) == 0 {
		s.println("No questions selected. Exiting.")
		return &Result{Topic: topic, Cancelled: true}, nil
	}

	personas, err := s.selectPersonas()
	if err != nil {
		return nil, err
	}

	s.println("")
	s.println(rule)
	s.println(s.style.heading("RESEARCH TOPIC: " + topic))
	s.printf("TOTAL QUESTIONS: %d\n", len(questions))
	s.printf("PERSONAS TO INTERVIEW: %d\n", len(personas))
	s.println(rule)

	ok, err := ask(s, "\nProceed with interviews? (y/n): ", parseYesNo)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.println("Interview cancelled.")
		return &Result{Topic: topic, Questions: questions, Cancelled: true}, nil
	}

	res := &Result{Topic: topic, Questions: questions}
	for i, id := range personas {
		if err := ctx.Err(); err != nil {
			return res, errors.NewCancelled("interview")
		}
		s.println("")
		s.println(rule)
		s.println(s.style.heading("INTERVIEWING: " + persona.DisplayName(id)))
		s.println(rule)

		o := s.runner.RunPersona(ctx, id, topic, questions)
		res.Outcomes = append(res.Outcomes, o)
		s.reportOutcome(o, len(questions))

		if len(personas) > 1 && i < len(personas)-1 {
			if _, err := s.readLine("\nPress Enter to continue to next interview..."); err != nil {
				return res, err
			}
		}
	}

	s.summary(res)
	return res, nil
}

func (s *Shell) banner() {
	s.println(rule)
	s.println(s.style.title("MARKET RESEARCH INTERVIEW SIMULATION"))
	if s.model != "" {
		s.println(s.style.dim("Using generative agents with the " + s.model + " model"))
	}
	s.println(rule)
}

func (s *Shell) reportOutcome(o ops.PersonaOutcome, total int) {
	switch o.Status {
	case ops.StatusCompleted:
		s.println(s.style.success("\nInterview completed and saved to: " + o.Path))
	case ops.StatusPartial:
		s.println(s.style.warn(fmt.Sprintf("\nInterview saved to: %s (%d of %d answered, %d failed)", o.Path, o.Answered, total, o.Failed)))
		s.println(s.style.dim("  " + o.Error))
	default:
		s.println(s.style.err(fmt.Sprintf("Error interviewing %s: %s", o.PersonaID, o.Error)))
		if o.IsFatal() {
			s.println(s.style.dim("  Is the generation backend running?"))
		}
	}
}

func (s *Shell) summary(res *Result) {
	saved := 0
	for _, o := range res.Outcomes {
		if o.Path != "" {
			saved++
		}
	}

	s.println("")
	s.println(rule)
	s.println(s.style.title("SIMULATION COMPLETE"))
	s.println(rule)
	s.printf("Total interviews conducted: %d\n", saved)
	s.printf("Results saved in the '%s' directory\n", s.outputDir)

	if saved == 0 {
		return
	}

	s.println(s.style.heading(fmt.Sprintf("\n=== INTERVIEW SUMMARY: %s ===", res.Topic)))
	for _, o := range res.Outcomes {
		if o.Path == "" {
			continue
		}
		s.printf("\n%s:\n", persona.DisplayName(o.PersonaID))
		s.printf("  - Questions answered: %d\n", o.Answered)
		if o.Failed > 0 {
			s.printf("  - Questions failed: %d\n", o.Failed)
		}
		s.printf("  - Results file: %s\n", filepath.Base(o.Path))
	}
	s.printf("\nAll interview data is available in the '%s' directory.\n", s.outputDir)
}

// ask prompts until parse accepts the line. INVALID_SELECTION is reported and
// re-prompted; any other error is returned.
func ask[T any](s *Shell, label string, parse func(string) (T, error)) (T, error) {
	var zero T
	for {
		line, err := s.readLine(label)
		if err != nil {
			return zero, err
		}
		v, err := parse(line)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, errors.ErrInvalidSelection) {
			return zero, err
		}
		s.println(s.style.err(selectionMessage(err)))
	}
}

// selectionMessage returns the user-facing text of a selection error.
func selectionMessage(err error) string {
	var pErr *errors.PanelError
	if stderrors.As(err, &pErr) {
		return pErr.Message
	}
	return err.Error()
}

// readLine prints label and returns the next trimmed input line.
func (s *Shell) readLine(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", errors.NewInternal(err)
		}
		fmt.Fprintln(s.out)
		return "", errors.NewCancelled("interactive session")
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseYesNo(line string) (bool, error) {
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, errors.NewInvalidSelection("Please enter 'y' for yes or 'n' for no.")
}

package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/panelist/internal/catalog"
	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/mcp"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/shell"
	"github.com/hpungsan/panelist/internal/web"
)

const appDescription = `Features:
   - Multiple research topic categories
   - Customizable question sets
   - Question templates for common scenarios
   - Interactive question editing
   - Multiple AI persona interviews
   - Automatic result saving and analysis

Output:
   - Individual JSON files for each interview
   - Saved in the 'interview_results' directory (output_dir in config)`

// newCLIApp creates the CLI application with all commands.
// e may be nil when only help or version output is needed.
func newCLIApp(e *env, stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:        "panelist",
		Usage:       "Market research interview simulation",
		UsageText:   "panelist            Run full interactive simulation\n   panelist test       Run quick test\n   panelist help       Show this help",
		Description: appDescription,
		Version:     Version,
		Writer:      stdout,
		ErrWriter:   stderr,
		Action:      interactiveAction(e),
		Commands: []*cli.Command{
			testCmd(e),
			listCmd(e),
			showCmd(e),
			personasCmd(e),
			topicsCmd(),
			rateCmd(e),
			mcpCmd(e),
			uiCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// interactiveAction runs the menu-driven simulation.
func interactiveAction(e *env) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() > 0 {
			printUnknownOption(c.App.Writer, c.Args().First())
			return cli.Exit("", 1)
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()

		sh := shell.New(e.stdin, c.App.Writer, e.deps.Registry, e.deps,
			shell.WithModel(e.cfg.Model),
			shell.WithOutputDir(e.cfg.OutputDir))
		if _, err := sh.Run(ctx); err != nil {
			if errors.Is(err, errors.ErrCancelled) {
				return cli.Exit("Simulation interrupted.", 1)
			}
			return outputError(err)
		}
		return nil
	}
}

// testCmd creates the quick test command.
func testCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Run a quick test with one persona and three questions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the run result as JSON"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			w := c.App.Writer
			if !c.Bool("json") {
				fmt.Fprintln(w, "=== QUICK TEST MODE ===")
				fmt.Fprintf(w, "Testing with %s persona and %d sample questions\n",
					persona.DisplayName(persona.TechEarlyAdopter), len(catalog.QuickTestQuestions()))
			}

			out, err := ops.QuickTest(ctx, e.deps)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(w, out)
			}
			return printQuickTest(w, out)
		},
	}
}

// printQuickTest prints the exchanges in question order, then the outcome.
func printQuickTest(w io.Writer, out *ops.RunOutput) error {
	o := out.Outcomes[0]
	for _, q := range catalog.QuickTestQuestions() {
		if a, ok := o.Results[q]; ok {
			fmt.Fprintf(w, "\nQ: %s\nA: %s\n", q, a)
		}
	}

	if o.Status == ops.StatusCompleted {
		fmt.Fprintln(w, "\nTest completed successfully!")
		fmt.Fprintf(w, "Results saved to: %s\n", o.Path)
		return nil
	}
	if o.Path != "" {
		fmt.Fprintf(w, "\nResults saved to: %s\n", o.Path)
	}
	return cli.Exit(fmt.Sprintf("Test failed with error: %s", o.Error), 1)
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved transcripts, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "persona", Aliases: []string{"p"}, Usage: "Filter by persona ID"},
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Filter by research topic (case-insensitive)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListTranscripts(c.Context, e.db, ops.ListInput{
				Persona: c.String("persona"),
				Topic:   c.String("topic"),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a saved transcript by session ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"md"}, Usage: "Print as Markdown"},
			&cli.BoolFlag{Name: "html", Usage: "Print as a standalone HTML page"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("markdown") && c.Bool("html") {
				return outputError(errors.NewInvalidRequest("--markdown and --html are mutually exclusive"))
			}

			output, err := ops.FetchTranscript(c.Context, e.db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			w := c.App.Writer
			switch {
			case c.Bool("markdown"):
				_, err = io.WriteString(w, ops.RenderMarkdown(output.Record))
			case c.Bool("html"):
				var page string
				if page, err = ops.RenderReportPage(output.Record); err == nil {
					_, err = io.WriteString(w, page)
				}
			default:
				return outputJSON(w, output)
			}
			if err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// personasCmd creates the personas command.
func personasCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "personas",
		Usage: "List the built-in personas",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, map[string]any{"items": e.deps.Registry.Profiles()})
		},
	}
}

// topicsCmd creates the topics command.
func topicsCmd() *cli.Command {
	return &cli.Command{
		Name:  "topics",
		Usage: "List research topics and question templates",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, map[string]any{
				"topics":    catalog.Topics(),
				"templates": catalog.Templates(),
			})
		},
	}
}

// rateCmd creates the rate command.
func rateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "rate",
		Usage:     "Score the importance of a statement from 1 to 10 (text from args or stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData(e.stdin) {
				var err error
				if text, err = readAll(e.stdin); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			output, err := ops.Rate(c.Context, e.deps, text)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the interview tools over MCP (stdio)",
		Action: func(c *cli.Context) error {
			if err := mcp.Run(e.deps, e.cfg.DisabledTools, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Browse saved transcripts in a web browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			srv, err := web.NewServer(e.db, e.deps.Registry, e.logger, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, e.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var pErr *errors.PanelError
	if stderrors.As(err, &pErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if r is a pipe or file rather than a terminal.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readAll reads all content from r.
func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

package main

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/panelist/internal/backend"
	"github.com/hpungsan/panelist/internal/config"
	"github.com/hpungsan/panelist/internal/db"
	"github.com/hpungsan/panelist/internal/logging"
	"github.com/hpungsan/panelist/internal/mcp"
	"github.com/hpungsan/panelist/internal/ops"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/transcript"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"test": true, "help": true,
	"list": true, "show": true, "personas": true, "topics": true,
	"rate": true, "mcp": true, "ui": true,
}

// isKnownArg reports whether arg is a subcommand or a global help/version flag.
func isKnownArg(arg string) bool {
	return cliCommands[arg] || isHelpOrVersionFlag(arg)
}

func isHelpOrVersionFlag(arg string) bool {
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	return isHelpOrVersionFlag(args[1]) || args[1] == "help"
}

// env is everything the commands share once configuration is loaded.
type env struct {
	cfg    *config.Config
	db     *sql.DB
	deps   *ops.Deps
	logger *slog.Logger
	stdin  io.Reader
}

func (e *env) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// setup loads .env, config and the transcript index, and builds the generator.
func setup(stdin io.Reader) (*env, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	baseDir, err := config.DefaultBaseDir()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	gen, err := backend.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &env{
		cfg:    cfg,
		db:     database,
		logger: logger,
		stdin:  stdin,
		deps: &ops.Deps{
			Registry:  persona.Default(),
			Generator: gen,
			Options:   backend.OptionsFromConfig(cfg),
			Store:     transcript.NewStore(cfg.OutputDir),
			DB:        database,
			Logger:    logger,
		},
	}, nil
}

// printUnknownOption writes the usage hint for an unrecognized argument.
func printUnknownOption(w io.Writer, arg string) {
	fmt.Fprintf(w, "Unknown option: %s\n", arg)
	fmt.Fprintln(w, "Use 'test', 'help', or no argument for full simulation")
}

// exitCode prints err to stderr and maps it to a process exit status.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr cli.ExitCoder
	if stderrors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) >= 2 && !isKnownArg(args[1]) {
		printUnknownOption(stdout, args[1])
		return 1
	}

	// Help and version need no config or database.
	if isHelpOrVersion(args) {
		return exitCode(stderr, newCLIApp(nil, stdout, stderr).Run(args))
	}

	e, err := setup(stdin)
	if err != nil {
		return exitCode(stderr, err)
	}
	defer e.Close()

	return exitCode(stderr, newCLIApp(e, stdout, stderr).Run(args))
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dotandev/hbclabel/internal/config"
	"github.com/dotandev/hbclabel/internal/errors"
	"github.com/dotandev/hbclabel/internal/hasm"
	"github.com/dotandev/hbclabel/internal/journal"
	"github.com/dotandev/hbclabel/internal/labeler"
	"github.com/dotandev/hbclabel/internal/logger"
	"github.com/dotandev/hbclabel/internal/progress"
	"github.com/dotandev/hbclabel/internal/telemetry"
)

// Version will be set by the main package
var Version = "dev"

// Exit codes.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitAlreadyAnnotated = 2
)

type rootFlags struct {
	dryRun   bool
	workers  int
	logLevel string
	logJSON  bool
	noColor  bool
	exempt   []string
}

// reportedError marks an error already shown to the user.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// NewRootCmd builds the hbclabel command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "hbclabel [file]",
		Short: "Annotate Hermes bytecode listings with branch labels",
		Long: `hbclabel injects branch labels as comments into a Hermes bytecode
disassembly produced by hbctool. The labels are ignored when the listing is
re-assembled.

For every jump it finds the destination instruction by replaying the byte
width of the instructions in between, then marks the jump with ;L<n> and
the destination with ;L<n>:.

If no file is given, instruction.hasm in the current directory is processed
(see default_file in .hbclabel.toml).

Examples:
  hbclabel                          Annotate ./instruction.hasm
  hbclabel out/instruction.hasm     Annotate a specific listing
  hbclabel --dry-run a.hasm | less  Preview without touching the file`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.dryRun, "dry-run", false, "Write the annotated listing to stdout and leave the file unchanged")
	f.IntVar(&flags.workers, "workers", 0, "Number of functions annotated in parallel (default from config)")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVar(&flags.logJSON, "log-json", false, "Emit logs as JSON")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	f.StringSliceVar(&flags.exempt, "exempt", nil, "Additional opcodes whose first operand shares the opcode byte (one byte narrower)")

	cmd.AddCommand(newHistoryCmd(), newCompletionCmd())
	return cmd
}

func run(cmd *cobra.Command, args []string, flags *rootFlags) error {
	config.BuildVersion = Version
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, flags); err != nil {
		return err
	}

	lvl, _ := logger.ParseLevel(cfg.LogLevel)
	logger.SetOutput(cmd.ErrOrStderr(), cfg.LogJSON)
	logger.SetLevel(lvl)
	logger.Logger.Debug("Configuration loaded", "config", cfg.String())

	path := cfg.DefaultFile
	if len(args) == 1 {
		path = args[0]
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.TelemetryEnabled,
		ExporterURL: cfg.TelemetryEndpoint,
		Version:     Version,
	})
	if err != nil {
		logger.Logger.Warn("Telemetry disabled", "error", err)
		shutdown = func() {}
	}
	defer shutdown()

	reporter := progress.New(cmd.ErrOrStderr(), interactive(cmd.ErrOrStderr()), flags.noColor)
	reporter.Banner(Version)

	opts := labeler.Options{
		Model:    hasm.NewWidthModel(cfg.ExemptOpcodes...),
		Workers:  cfg.Workers,
		DryRun:   flags.dryRun,
		Out:      cmd.OutOrStdout(),
		Observer: reporter,
		Version:  Version,
	}

	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Logger.Warn("Run journal unavailable", "path", cfg.JournalPath, "error", err)
		} else {
			defer store.Close()
			opts.Journal = store
		}
	}

	res, err := labeler.Run(ctx, path, opts)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrAlreadyAnnotated):
		msg := fmt.Sprintf("%s is already annotated, nothing to do", filepath.Base(path))
		if res.MatchesLastRun {
			msg += " (matches the last annotated output)"
		}
		reporter.Warn(msg)
		return reportedError{err}
	default:
		reporter.Fail(err.Error())
		return reportedError{err}
	}

	switch {
	case flags.dryRun:
		reporter.Done(fmt.Sprintf("Done. %d labels in %d of %d functions (dry run)", res.Labels, res.Annotated, res.Functions))
	case res.Changed:
		reporter.Done(fmt.Sprintf("Done. %d labels in %d of %d functions", res.Labels, res.Annotated, res.Functions))
	default:
		reporter.Done("Done. No branches found, file unchanged")
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, flags *rootFlags) error {
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = flags.logJSON
	}
	cfg.ExemptOpcodes = append(cfg.ExemptOpcodes, flags.exempt...)
	return cfg.Validate()
}

// interactive reports whether progress lines can be rewritten in place on w.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute runs the command with the process arguments and returns the exit
// code. This is called by main.main().
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, errors.ErrAlreadyAnnotated) {
		return ExitAlreadyAnnotated
	}
	var reported reportedError
	if !stderrors.As(err, &reported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitError
}

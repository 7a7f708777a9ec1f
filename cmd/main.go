// Command skills-analysis turns a skills survey export into team reports.
// It takes no flags: config.json in the working directory (or the file named
// by SKILLS_CONFIG) describes the run, SKILLS_* variables override it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devops-chapter/skills-analysis/internal/adapters/console"
	"github.com/devops-chapter/skills-analysis/internal/app"
	"github.com/devops-chapter/skills-analysis/internal/config"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/pkg/logger"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
	exitMapping = 3
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "skills-analysis",
		Short:         "Summarize a skills survey export per category",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer) error {
	printer := console.New(stdout)

	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging: "+err.Error())
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(ctx)
	if err != nil {
		printer.Errorf("%v", err)
		return err
	}

	// The config picks the handler format and level.
	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		printer.Errorf("%v", err)
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	pipeline := app.New(cfg,
		app.WithLogger(logger.Get().Named("pipeline")),
		app.WithProgress(printer),
	)
	summary, err := pipeline.Run(ctx)
	if summary != nil && (err == nil || summary.Rows > 0) {
		printSummary(printer, summary)
	}
	if err != nil {
		printer.Errorf("%v", err)
		return err
	}
	return nil
}

func printSummary(p *console.Printer, s *app.Summary) {
	stats := []console.Stat{
		{Label: "Run", Value: s.RunID},
		{Label: "Processes", Value: fmt.Sprint(s.Processes)},
		{Label: "Rows", Value: strconv.Itoa(s.Rows)},
		{Label: "Respondents", Value: strconv.Itoa(s.Respondents)},
		{Label: "Skipped", Value: strconv.Itoa(s.Skipped)},
		{Label: "Duration", Value: s.Duration.String()},
	}
	warnings := make([]string, len(s.Warnings))
	for i, w := range s.Warnings {
		warnings[i] = w.String()
	}
	p.Summary("Skills analysis: "+s.Team, stats, s.Files, warnings)
}

func exitCode(err error) int {
	var (
		cfgErr *config.Error
		mapErr *mapping.Error
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr):
		return exitConfig
	case errors.As(err, &mapErr):
		return exitMapping
	default:
		return exitFailure
	}
}

// Command sample-survey writes a synthetic survey export for a team of a
// category mapping. Its output is a valid input for skills-analysis.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/surveygen"
)

type options struct {
	mappingFile string
	team        string
	respondents int
	seed        int64
	noise       float64
	output      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "sample-survey",
		Short:         "Generate a synthetic skills survey export",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.mappingFile, "mapping", "category_mapping.json", "category mapping file")
	f.StringVar(&opts.team, "team", "", "team to generate answers for")
	f.IntVar(&opts.respondents, "respondents", 25, "number of respondents")
	f.Int64Var(&opts.seed, "seed", 1, "random seed")
	f.Float64Var(&opts.noise, "noise", 0.2, "chance of an off-mapping skill per list answer")
	f.StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("team")
	cmd.SetOut(stdout)
	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer) (err error) {
	mp, err := mapping.Load(ctx, opts.mappingFile, opts.team)
	if err != nil {
		return err
	}

	survey, err := surveygen.New(mp,
		surveygen.WithRespondents(opts.respondents),
		surveygen.WithSeed(opts.seed),
		surveygen.WithNoise(opts.noise),
	).Generate(ctx)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		return survey.WriteCSV(stdout)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cErr)
		}
	}()
	return survey.WriteCSV(f)
}

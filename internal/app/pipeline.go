// Package app runs one skills analysis: it reads the survey, maps answers to
// the team's categories and writes the requested reports.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devops-chapter/skills-analysis/internal/adapters/mq/queue"
	"github.com/devops-chapter/skills-analysis/internal/adapters/mq/worker"
	"github.com/devops-chapter/skills-analysis/internal/adapters/report"
	"github.com/devops-chapter/skills-analysis/internal/adapters/surveycsv"
	"github.com/devops-chapter/skills-analysis/internal/config"
	"github.com/devops-chapter/skills-analysis/internal/domain/aggregate"
	"github.com/devops-chapter/skills-analysis/internal/domain/bio"
	"github.com/devops-chapter/skills-analysis/internal/domain/dedupe"
	"github.com/devops-chapter/skills-analysis/internal/domain/mapping"
	"github.com/devops-chapter/skills-analysis/internal/domain/matching"
	"github.com/devops-chapter/skills-analysis/internal/domain/model"
	"github.com/devops-chapter/skills-analysis/internal/domain/normalize"
	"github.com/devops-chapter/skills-analysis/pkg/logger"
	"github.com/devops-chapter/skills-analysis/pkg/metrics"
)

// detailSuffix names the per-respondent variant of a report.
const detailSuffix = "_detail"

// Progress receives row progress while a run normalizes the survey.
type Progress interface {
	Start(label string, total int)
	Advance(done int)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(string, int) {}
func (noProgress) Advance(int)       {}
func (noProgress) Finish()           {}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Team      string
	Processes []string

	Rows        int // data rows read, including rows the CSV parser rejected
	Respondents int
	Skipped     int

	Warnings []normalize.Warning
	Files    []string
	Duration time.Duration
}

// Pipeline runs the analysis described by one Config.
type Pipeline struct {
	cfg      *config.Config
	logger   logger.Logger
	progress Progress
	now      func() time.Time
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress streams row progress to pr, usually the console printer.
func WithProgress(pr Progress) Option {
	return func(p *Pipeline) {
		if pr != nil {
			p.progress = pr
		}
	}
}

// WithClock replaces time.Now for run timing.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a pipeline for a validated config.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		progress: noProgress{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	return p
}

// run holds the state of one Run call.
type run struct {
	*Pipeline
	log     logger.Logger
	summary *Summary
}

// Run executes the configured processes. Configuration problems are
// *config.Error, mapping problems *mapping.Error; neither writes any file.
// A summary is returned whenever the run got past loading its inputs.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	metrics.ResetRun()
	start := p.now()
	r := &run{
		Pipeline: p,
		summary: &Summary{
			RunID:     uuid.NewString(),
			Team:      p.cfg.Input.TeamName,
			Processes: p.cfg.SelectedProcesses(),
		},
	}
	r.log = p.logger.With(logger.String("run_id", r.summary.RunID))
	r.log.Info(ctx, "run started",
		logger.String("team", r.summary.Team),
		logger.Strings("processes", r.summary.Processes),
	)

	err := r.execute(ctx)

	finished := p.now()
	r.summary.Duration = finished.Sub(start)
	metrics.RecordRun(r.summary.Duration, finished, err != nil)
	if p.cfg.MetricsFile != "" && !aborted(err) {
		if mErr := metrics.WriteTextfile(p.cfg.MetricsFile); mErr != nil {
			r.warn(ctx, normalize.Warnf(0, normalize.WarnWriteFailed, "metrics: %v", mErr))
		}
	}

	if err != nil {
		r.log.Error(ctx, "run failed", logger.Error(err))
		return r.summary, err
	}
	r.log.Info(ctx, "run finished",
		logger.Int("respondents", r.summary.Respondents),
		logger.Int("warnings", len(r.summary.Warnings)),
		logger.Int("files", len(r.summary.Files)),
	)
	return r.summary, nil
}

// aborted reports whether err stopped the run before any processing, in
// which case nothing may be written.
func aborted(err error) bool {
	var (
		cfgErr *config.Error
		mapErr *mapping.Error
	)
	return errors.As(err, &cfgErr) || errors.As(err, &mapErr)
}

func (r *run) execute(ctx context.Context) error {
	cfg := r.cfg

	mp, err := mapping.Load(ctx, cfg.Input.MappingFile, cfg.Input.TeamName)
	if err != nil {
		return err
	}
	metrics.UpdateMappingSubcategories(mp.Len())
	r.log.Debug(ctx, "mapping loaded",
		logger.Int("categories", len(mp.Categories())),
		logger.Int("subcategories", mp.Len()),
	)

	var bios *bio.Generator
	if cfg.Wants(config.ProcessMadLibs) {
		bios, err = bio.New(mp,
			bio.WithTemplate(cfg.MadLibs.Template),
			bio.WithTopSkills(cfg.MadLibs.TopSkills),
			bio.WithPlaceholder(cfg.MadLibs.Placeholder),
		)
		if err != nil {
			return config.InvalidWrap("mad_libs.template", err)
		}
	}

	table, rowErrs, err := surveycsv.Read(ctx, cfg.Input.CSVFile)
	switch {
	case errors.Is(err, surveycsv.ErrNoHeader):
		return config.InvalidWrap("input.csv_file", err)
	case err != nil && ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	case err != nil:
		return fmt.Errorf("%w: %w", ErrReadSurvey, err)
	}

	respondents, err := r.normalize(ctx, mp, table, rowErrs)
	if err != nil {
		return err
	}

	return r.write(ctx, r.tables(ctx, mp, bios, respondents))
}

// normalize turns every survey row into a respondent.
func (r *run) normalize(ctx context.Context, mp *mapping.Mapping, table *surveycsv.Table, rowErrs []surveycsv.RowError) ([]model.Respondent, error) {
	cfg := r.cfg
	matcher := matching.New(mp,
		matching.WithPolicy(cfg.Matching.Policy),
		matching.WithMinScore(cfg.Matching.MinScore),
	)
	var opts []normalize.Option
	if cfg.Input.DedupeRespondents {
		opts = append(opts, normalize.WithDeduper(dedupe.NewInMemoryDeduper()))
	}
	n, headerWarnings, err := normalize.New(table.Header, mp, matcher, normalize.Columns(cfg.Columns), opts...)
	if err != nil {
		return nil, config.InvalidWrap("columns", err)
	}
	r.warn(ctx, headerWarnings...)

	for _, re := range rowErrs {
		metrics.RecordRowRead()
		metrics.RecordRowSkipped()
		r.summary.Rows++
		r.summary.Skipped++
		r.warn(ctx, normalize.Warnf(re.Line, normalize.WarnParseError, "%v; row skipped", re.Err))
	}

	respondents := make([]model.Respondent, 0, len(table.Rows))
	r.progress.Start("rows", len(table.Rows))
	defer r.progress.Finish()

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		metrics.RecordRowRead()
		r.summary.Rows++

		resp, warnings, ok := n.Normalize(ctx, row.Line, row.Cells)
		r.warn(ctx, warnings...)
		if !ok {
			metrics.RecordRowSkipped()
			r.summary.Skipped++
		} else {
			metrics.RecordRespondent()
			for _, c := range resp.Claims {
				metrics.RecordClaim(string(c.Kind), string(c.Match))
			}
			respondents = append(respondents, resp)
		}
		r.progress.Advance(i + 1)
	}
	r.summary.Respondents = len(respondents)
	return respondents, nil
}

// tables builds the report tables of the selected processes, in order.
func (r *run) tables(ctx context.Context, mp *mapping.Mapping, bios *bio.Generator, rs []model.Respondent) []queue.Task {
	var tasks []queue.Task
	add := func(process, name string, t report.Table) {
		tasks = append(tasks, queue.Task{Seq: len(tasks), Process: process, Name: name, Table: t})
	}

	for _, process := range r.summary.Processes {
		switch process {
		case config.ProcessMadLibs:
			generated := make([]bio.Bio, 0, len(rs))
			for _, resp := range rs {
				b, err := bios.Generate(resp)
				if err != nil {
					r.warn(ctx, normalize.Warnf(resp.Line, normalize.WarnBioFailed, "%v", err))
					continue
				}
				generated = append(generated, b)
			}
			add(process, process, report.BiosTable(generated))

		case config.ProcessCurrentSkills:
			add(process, process, report.CurrentTable(aggregateOf(mp, aggregate.Current, rs)))
			if r.cfg.Output.Detail {
				add(process, process+detailSuffix, report.CurrentDetailTable(rs))
			}

		case config.ProcessFutureSkills:
			add(process, process, report.FutureTable(aggregateOf(mp, aggregate.Future, rs)))
			if r.cfg.Output.Detail {
				add(process, process+detailSuffix, report.FutureDetailTable(rs))
			}
		}
	}
	return tasks
}

func aggregateOf(mp *mapping.Mapping, v aggregate.Variant, rs []model.Respondent) *aggregate.Report {
	b := aggregate.NewBuilder(mp, v)
	for _, resp := range rs {
		b.Add(resp)
	}
	return b.Report()
}

// write hands every task to a single writer and records the outcome.
// Failed reports do not stop the remaining ones.
func (r *run) write(ctx context.Context, tasks []queue.Task) error {
	w := report.NewWriter(r.summary.Team,
		report.WithDir(r.cfg.Output.Dir),
		report.WithFormat(r.cfg.Output.Format),
		report.WithOverwrite(r.cfg.Output.Overwrite),
	)

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(tasks) + 1))
	for _, t := range tasks {
		if err := q.Enqueue(ctx, t); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
	}
	_ = q.Close()

	results := worker.NewPool(1, q, w, worker.WithLogger(r.log.Named("writer"))).Run(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.warn(ctx, normalize.Warnf(0, normalize.WarnWriteFailed, "%v", res.Err))
			continue
		}
		r.summary.Files = append(r.summary.Files, res.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", ErrOutputFailed, failed, len(tasks))
	}
	return nil
}

func (r *run) warn(ctx context.Context, warnings ...normalize.Warning) {
	for _, w := range warnings {
		metrics.RecordWarning(string(w.Kind))
		r.log.Warn(ctx, w.Message,
			logger.String("kind", string(w.Kind)),
			logger.Int("line", w.Line),
		)
		r.summary.Warnings = append(r.summary.Warnings, w)
	}
}

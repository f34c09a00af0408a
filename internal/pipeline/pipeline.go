package pipeline

import (
	"context"
	"log/slog"

	"github.com/toscrape/harvester/internal/crawler"
	"github.com/toscrape/harvester/internal/model"
)

// Run accumulates the state of one harvest as it moves through the
// pipeline. Each step reads what earlier steps produced and writes its
// own results.
type Run struct {
	// Categories are the book catalog categories in discovery order.
	Categories []crawler.Category

	// BookLinks holds the collected book-detail links per category.
	BookLinks []crawler.CategoryLinks

	// QuotePages holds the fetched quote pages with their HTML.
	QuotePages []crawler.QuotePage

	// Books are the parsed book records.
	Books []model.BookItem

	// Quotes are the parsed quote records.
	Quotes []model.QuoteItem

	// Dataset is the merged output, set by the aggregate step.
	Dataset *model.Dataset

	// StoredRunID is the database id assigned by the persist step,
	// zero when persistence is disabled.
	StoredRunID int64

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Cancelled is set when the run was cut short by context
	// cancellation. The accumulated partial results remain valid.
	Cancelled bool

	// Err holds the first step error when execution stopped early.
	Err error
}

// NewRun creates an empty run accumulator.
func NewRun() *Run {
	return &Run{}
}

// CancelSafeStep is an optional interface a Step can implement to keep
// running after the run context is cancelled. Pure in-memory steps
// implement it so an interrupted crawl still yields a dataset from the
// records collected before the signal.
type CancelSafeStep interface {
	Step

	// CancelSafe reports whether the step may run on a cancelled run.
	CancelSafe() bool
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the
// accumulated run from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the run to modify.
	// Returns an error if the step fails critically; non-critical
	// failures should leave partial results in the run and return nil.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and their errors
// recorded in the run, but subsequent steps still execute.
//
// Design decision: This option exists because a failed persist step
// shouldn't discard an otherwise complete dataset. The default is to
// stop on error because early failures usually mean later steps have
// nothing to work with.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps handle their own cancellation internally.
// Cancellation does not abandon the run: the remaining crawl and parse
// steps are skipped, but CancelSafeStep steps still execute so the
// records collected before the signal end up in a dataset.
//
// Returns the first error encountered if continueOnError is false, the
// context error when the run was cancelled, or nil if all steps
// complete (errors are recorded in the run).
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil && !run.Cancelled {
			p.logger.Warn("pipeline cancelled, finishing with partial results",
				"step", step.Name(),
				"reason", err,
			)
			run.Cancelled = true
			if run.Err == nil {
				run.Err = err
			}
		}

		if run.Cancelled && !cancelSafe(step) {
			p.logger.Debug("skipping step on cancelled run", "step", step.Name())
			continue
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)

			if run.Err == nil {
				run.Err = err
			}

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed", "step", step.Name())
		}

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	if run.Cancelled {
		return run.Err
	}
	return nil
}

// cancelSafe reports whether a step opted in to running on a cancelled
// run.
func cancelSafe(step Step) bool {
	cs, ok := step.(CancelSafeStep)
	return ok && cs.CancelSafe()
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

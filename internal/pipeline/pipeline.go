package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/uciscope/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the result
// accumulated by previous steps.
type Step interface {
	// Do executes the step. Returning an error stops the pipeline for this
	// page; skip errors from the model package are the expected way to
	// reject a page.
	Do(ctx context.Context, result *model.PageResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
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

// Execute runs all steps on result in order and stops at the first error,
// which is also stored in result.Err.
//
// Cancellation is checked before each step; the steps themselves are
// short, synchronous computations.
func (p *Pipeline) Execute(ctx context.Context, result *model.PageResult) error {
	pageURL := ""
	if result.Page != nil {
		pageURL = result.Page.EffectiveURL()
	}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return err
		}

		if err := step.Do(ctx, result); err != nil {
			result.Err = err
			if model.IsSkip(err) {
				p.logger.Debug("page skipped",
					"step", step.Name(),
					"url", pageURL,
					"reason", err,
				)
			} else {
				p.logger.Warn("step failed",
					"step", step.Name(),
					"url", pageURL,
					"error", err,
				)
			}
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"url", pageURL,
		)
		result.PerformedSteps = append(result.PerformedSteps, step.Name())
	}
	return nil
}

// Process runs the pipeline on a freshly fetched page.
// The result is returned even when an error stopped the pipeline.
func (p *Pipeline) Process(ctx context.Context, page *model.Page) (*model.PageResult, error) {
	result := model.NewPageResult(page)
	err := p.Execute(ctx, result)
	return result, err
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

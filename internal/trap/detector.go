package trap

import "log/slog"

// Detector applies trap stages in order.
type Detector struct {
	stages []Stage
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithStages replaces the stage list.
func WithStages(stages ...Stage) Option {
	return func(d *Detector) {
		d.stages = stages
	}
}

// WithLogger sets the logger used to report stages that fired.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector running the default stages with default limits.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		stages: StagesFor(DefaultLimits()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FilterLinks returns the links of a page on pageHost that survive every
// stage. priorPages is the number of unique pages of pageHost crawled before.
func (d *Detector) FilterLinks(pageHost string, links []string, priorPages int) []string {
	ctx := Context{PageHost: pageHost, PriorPages: priorPages}
	out := links
	for _, stage := range d.stages {
		before := len(out)
		out = stage.Filter(ctx, out)
		if len(out) != before {
			d.logger.Info("trap stage fired",
				"stage", stage.Name(),
				"host", pageHost,
				"prior_pages", priorPages,
				"links_before", before,
				"links_after", len(out),
			)
		}
		if len(out) == 0 {
			break
		}
	}
	return out
}

// Stages returns the configured stages in order.
func (d *Detector) Stages() []Stage {
	return append([]Stage(nil), d.stages...)
}

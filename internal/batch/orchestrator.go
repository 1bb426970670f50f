// Package batch drives raw hand history files through detection, parsing
// and validation. It is the only pipeline component aware of progress and
// cancellation; everything below it is a pure transform.
package batch

import (
	"context"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"handtracker/internal/detect"
	"handtracker/internal/hand"
	"handtracker/internal/parser"
	"handtracker/internal/validate"
)

// Source is one raw text blob handed to the pipeline by the external
// file-discovery collaborator. Hint may name the platform; empty means
// auto-detect.
type Source struct {
	Name string
	Text string
	Hint hand.Platform
}

// Failure records one hand that could not be parsed or validated.
type Failure struct {
	Source string `json:"source"`
	HandID string `json:"hand_id"`
	Reason string `json:"reason"`
}

// FileFailure records a whole source that had to be skipped, typically an
// unrecognized platform. The batch continues with the remaining sources.
type FileFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Report is the outcome of one batch. A partially failed batch still
// carries every accepted hand plus a readable account of what failed.
type Report struct {
	Accepted     []hand.Hand   `json:"-"`
	Duplicates   int           `json:"duplicates"`
	Failures     []Failure     `json:"failures"`
	FileFailures []FileFailure `json:"file_failures"`
}

// Orchestrator runs batches for one owning user. The duplicate registry
// it validates against persists across batches, so re-importing an
// overlapping file reports duplicates instead of double counting.
type Orchestrator struct {
	logger    zerolog.Logger
	validator *validate.Validator
	progress  *Progress
	workers   int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets how many sources are parsed concurrently.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClock injects a clock for progress timing in tests.
func WithClock(clock quartz.Clock) Option {
	return func(o *Orchestrator) {
		o.progress = NewProgress(clock)
	}
}

// New creates an orchestrator validating hands for the given user against
// the shared registry.
func New(logger zerolog.Logger, user string, registry *validate.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:    logger.With().Str("component", "batch").Logger(),
		validator: validate.New(user, registry),
		progress:  NewProgress(nil),
		workers:   4,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Progress exposes the orchestrator's progress state for polling or push.
func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// sourceResult keeps one source's outcomes so the merged report preserves
// source order even when files are parsed concurrently.
type sourceResult struct {
	accepted    []hand.Hand
	duplicates  int
	failures    []Failure
	fileFailure *FileFailure
}

// Process runs the batch. Cancellation is checked between hands, never
// mid-parse: an early stop keeps everything accepted so far and returns
// it alongside the context error.
func (o *Orchestrator) Process(ctx context.Context, sources []Source) (*Report, error) {
	// Cheap pre-count of hand boundary markers for progress estimation.
	o.progress.begin(StepCounting, 0)
	var expected uint64
	for _, src := range sources {
		expected += uint64(parser.CountBlocks(src.Text))
	}
	o.progress.begin(StepProcessing, expected)
	o.logger.Info().Int("sources", len(sources)).Uint64("hands_expected", expected).
		Msg("starting batch")

	results := make([]sourceResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range sources {
		g.Go(func() error {
			results[i] = o.processSource(gctx, sources[i])
			return gctx.Err()
		})
	}
	err := g.Wait()

	report := &Report{}
	for _, res := range results {
		report.Accepted = append(report.Accepted, res.accepted...)
		report.Duplicates += res.duplicates
		report.Failures = append(report.Failures, res.failures...)
		if res.fileFailure != nil {
			report.FileFailures = append(report.FileFailures, *res.fileFailure)
		}
	}

	if err != nil {
		// Early stop, not a rollback: the report keeps everything
		// accepted before cancellation hit.
		o.logger.Warn().Int("accepted", len(report.Accepted)).Err(err).Msg("batch stopped early")
		return report, err
	}
	o.progress.finish()
	o.logger.Info().
		Int("accepted", len(report.Accepted)).
		Int("duplicates", report.Duplicates).
		Int("failed", len(report.Failures)).
		Msg("batch complete")
	return report, err
}

// processSource runs one file through detector, parser and validator.
func (o *Orchestrator) processSource(ctx context.Context, src Source) sourceResult {
	var res sourceResult

	platform := src.Hint
	if platform == "" {
		detected, err := detect.Detect(src.Text)
		if err != nil {
			res.fileFailure = &FileFailure{Source: src.Name, Reason: err.Error()}
			o.logger.Warn().Str("source", src.Name).Err(err).Msg("skipping unrecognized file")
			return res
		}
		platform = detected
	}

	parse, ok := parser.ForPlatform(platform)
	if !ok {
		res.fileFailure = &FileFailure{Source: src.Name, Reason: "no parser for platform " + string(platform)}
		return res
	}

	hands, parseErrs := parse(src.Text)
	for _, perr := range parseErrs {
		res.failures = append(res.failures, Failure{Source: src.Name, HandID: perr.HandID, Reason: perr.Reason})
		o.progress.handDone(true)
	}

	for i := range hands {
		// Cancellation granularity is the hand, not the parse.
		if ctx.Err() != nil {
			return res
		}
		outcome, verr := o.validator.Validate(&hands[i])
		switch outcome {
		case validate.Accepted:
			res.accepted = append(res.accepted, hands[i])
			o.progress.handDone(false)
		case validate.Duplicate:
			res.duplicates++
			o.progress.handDone(false)
		case validate.Rejected:
			res.failures = append(res.failures, Failure{Source: src.Name, HandID: hands[i].ID, Reason: verr.Reason})
			o.progress.handDone(true)
		}
	}
	return res
}

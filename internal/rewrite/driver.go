// Package rewrite runs bounded rounds of LLM rewrites and keeps the best result.
package rewrite

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/logging"
	"github.com/HartBrook/keyfit/internal/prompt"
)

// DefaultMaxAttempts is the number of rewrite rounds when none is configured.
const DefaultMaxAttempts = 3

var errEmptyOutput = errors.New(errors.ErrGenerationFatal, "model returned empty text", "")

// Round records what happened in one rewrite round.
type Round struct {
	Index    int                `json:"index"`
	Snapshot *analysis.Snapshot `json:"snapshot,omitempty"`
	Improved bool               `json:"improved"`
	Err      string             `json:"error,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// Outcome is the result of a rewrite run. Best is nil when no round produced text.
type Outcome struct {
	Best   *analysis.Attempt
	Rounds []Round
	// Aborted holds the non-retryable error that ended the run early.
	Aborted error
}

// Observer is told about every finished round.
type Observer func(r Round)

// Driver runs rewrite rounds against a Generator.
type Driver struct {
	generator   llm.Generator
	builder     prompt.Builder
	maxAttempts int
	budget      time.Duration
	logger      *zap.Logger
	observe     Observer
	now         func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithMaxAttempts sets the number of rounds.
func WithMaxAttempts(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithBudget stops starting new rounds once the wall-clock budget is spent.
func WithBudget(budget time.Duration) Option {
	return func(d *Driver) {
		d.budget = budget
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		d.logger = logging.OrNop(l)
	}
}

// WithObserver registers a callback for finished rounds.
func WithObserver(fn Observer) Option {
	return func(d *Driver) {
		d.observe = fn
	}
}

// NewDriver creates a Driver.
func NewDriver(gen llm.Generator, builder prompt.Builder, opts ...Option) *Driver {
	d := &Driver{
		generator:   gen,
		builder:     builder,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rewrite runs up to the configured number of rounds on text, which should not
// carry a references section. Every round prompts from the best text so far.
// It stops early once a result satisfies both constraints, on a non-retryable
// error, on cancellation, or when the budget runs out. It never fails: errors
// end up in the Outcome.
func (d *Driver) Rewrite(ctx context.Context, text string, a analysis.Analyzer) Outcome {
	var out Outcome
	start := d.now()

	current, currentSnap := text, a.Analyze(text)

	for i := 0; i < d.maxAttempts; i++ {
		if ctx.Err() != nil {
			d.logger.Debug("rewrite cancelled", zap.Int("round", i))
			break
		}
		if d.budget > 0 && d.now().Sub(start) >= d.budget {
			d.logger.Info("rewrite budget exhausted", zap.Int("round", i), zap.Duration("budget", d.budget))
			break
		}

		roundStart := d.now()
		round := Round{Index: i}
		p := d.builder.Build(current, currentSnap, i)

		generated, err := d.generator.Generate(ctx, p)
		if err == nil {
			generated, _ = a.Body(llm.CleanOutput(generated))
			if strings.TrimSpace(generated) == "" {
				err = errEmptyOutput
			}
		}
		if err != nil {
			round.Err = err.Error()
			round.Duration = d.now().Sub(roundStart)
			out.Rounds = append(out.Rounds, round)
			d.notify(round)

			if err == errEmptyOutput || llm.IsTransient(err) {
				d.logger.Warn("rewrite round skipped", zap.Int("round", i), zap.Error(err))
				continue
			}
			d.logger.Warn("rewrite aborted", zap.Int("round", i), zap.Error(err))
			out.Aborted = err
			break
		}

		snap := a.Analyze(generated)
		round.Snapshot = &snap
		cand := &analysis.Attempt{Text: generated, Snapshot: snap, Origin: analysis.OriginLLM, Index: i}
		if cand.Better(out.Best) {
			out.Best = cand
			current, currentSnap = generated, snap
			round.Improved = true
		}
		round.Duration = d.now().Sub(roundStart)
		out.Rounds = append(out.Rounds, round)
		d.notify(round)

		d.logger.Debug("rewrite round finished",
			zap.Int("round", i),
			zap.Bool("improved", round.Improved),
			zap.String("snapshot", snap.Summary()))

		if snap.Satisfied() {
			break
		}
	}
	return out
}

func (d *Driver) notify(r Round) {
	if d.observe != nil {
		d.observe(r)
	}
}

// Package forced adjusts text without calling any external service. Every
// procedure here terminates in a bounded number of steps and re-counts its
// result instead of trusting its own edits.
package forced

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/logging"
)

// Rand is the randomness the engine needs for picking substitutes and templates.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a seeded PCG source. Equal seeds give equal edits.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// TimeSeed returns a seed derived from the wall clock.
func TimeSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// Engine holds what the forced procedures share: the substitution pool,
// sentence templates, randomness and terms that expansions must not touch.
type Engine struct {
	pool      Pool
	templates Templates
	rng       Rand
	avoid     []string
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPool sets the substitution pool.
func WithPool(p Pool) Option {
	return func(e *Engine) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithTemplates sets insertion and expansion templates.
func WithTemplates(t Templates) Option {
	return func(e *Engine) {
		e.templates = t.withDefaults()
	}
}

// WithRand sets the random source.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithAvoid lists terms that expansion sentences must not mention, usually
// the tracked terms, so that lengthening text leaves term counts alone.
func WithAvoid(terms []string) Option {
	return func(e *Engine) {
		e.avoid = terms
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(l)
	}
}

// New creates an Engine. Without options it uses DefaultPool, DefaultTemplates
// and a time-seeded random source.
func New(opts ...Option) *Engine {
	e := &Engine{
		pool:      DefaultPool(),
		templates: DefaultTemplates(),
		rng:       NewRand(TimeSeed()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) pick(n int) int {
	if n <= 1 {
		return 0
	}
	return e.rng.IntN(n)
}

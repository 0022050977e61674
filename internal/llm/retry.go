package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/logging"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// Retrying wraps a Generator, retrying transient failures after a fixed delay
// and pacing every call through an optional shared rate limiter.
type Retrying struct {
	next       Generator
	maxRetries int
	delay      time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// RetryOption configures Retrying.
type RetryOption func(*Retrying)

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) RetryOption {
	return func(r *Retrying) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithRetryDelay sets the fixed wait between attempts.
func WithRetryDelay(d time.Duration) RetryOption {
	return func(r *Retrying) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithLimiter shares a rate limiter between generators.
func WithLimiter(l *rate.Limiter) RetryOption {
	return func(r *Retrying) {
		r.limiter = l
	}
}

// WithRetryLogger sets the logger used for retry warnings.
func WithRetryLogger(l *zap.Logger) RetryOption {
	return func(r *Retrying) {
		r.logger = logging.OrNop(l)
	}
}

// NewRetrying wraps next with retry handling.
func NewRetrying(next Generator, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:       next,
		maxRetries: DefaultMaxRetries,
		delay:      DefaultRetryDelay,
		logger:     zap.NewNop(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate implements Generator. Non-transient errors are returned at once;
// transient ones are returned after the last retry fails.
func (r *Retrying) Generate(ctx context.Context, p Prompt) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", errors.GenerationFatal("rate limiter wait aborted", err)
			}
		}

		out, err := r.next.Generate(ctx, p)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsTransient(err) || ctx.Err() != nil || attempt == r.maxRetries {
			break
		}

		r.logger.Warn("transient generation error, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", r.maxRetries),
			zap.Duration("delay", r.delay),
			zap.Error(err))
		if err := r.sleep(ctx, r.delay); err != nil {
			return "", errors.GenerationFatal("retry wait aborted", err)
		}
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

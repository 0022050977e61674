package llm

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type scripted struct {
	errs  []error
	out   string
	calls int
}

func (s *scripted) Generate(ctx context.Context, p Prompt) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.out, nil
}

func noSleep(r *Retrying) {
	r.sleep = func(context.Context, time.Duration) error { return nil }
}

func TestRetrying_RecoversFromTransient(t *testing.T) {
	gen := &scripted{
		errs: []error{errors.GenerationTransient("overloaded", nil), errors.GenerationTransient("overloaded", nil)},
		out:  "ok",
	}
	r := NewRetrying(gen, noSleep)

	out, err := r.Generate(context.Background(), Prompt{User: "x"})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, gen.calls)
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	transient := errors.GenerationTransient("overloaded", nil)
	gen := &scripted{errs: []error{transient, transient, transient, transient, transient}}
	r := NewRetrying(gen, noSleep, WithMaxRetries(3))

	_, err := r.Generate(context.Background(), Prompt{User: "x"})

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 4, gen.calls)
}

func TestRetrying_FatalIsNotRetried(t *testing.T) {
	gen := &scripted{errs: []error{errors.GenerationFatal("bad request", nil)}}
	r := NewRetrying(gen, noSleep)

	_, err := r.Generate(context.Background(), Prompt{User: "x"})

	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestRetrying_WaitsFixedDelay(t *testing.T) {
	gen := &scripted{errs: []error{errors.GenerationTransient("overloaded", nil)}, out: "ok"}
	var waits []time.Duration
	r := NewRetrying(gen, WithRetryDelay(2*time.Second))
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	_, err := r.Generate(context.Background(), Prompt{})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, waits)
}

func TestRetrying_CancelledDuringWait(t *testing.T) {
	gen := &scripted{errs: []error{errors.GenerationTransient("overloaded", nil)}, out: "ok"}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrying(gen)
	r.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Generate(ctx, Prompt{})

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, 1, gen.calls)
}

func TestRetrying_UsesLimiter(t *testing.T) {
	gen := &scripted{out: "ok"}
	lim := rate.NewLimiter(rate.Inf, 1)
	r := NewRetrying(gen, WithLimiter(lim))

	out, err := r.Generate(context.Background(), Prompt{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(errors.GenerationTransient("x", nil)))
	assert.False(t, IsTransient(errors.GenerationFatal("status 429 in body", nil)))
	assert.True(t, IsTransient(stderrors.New("HTTP 429 Too Many Requests")))
	assert.True(t, IsTransient(stderrors.New("overloaded_error")))
	assert.False(t, IsTransient(stderrors.New("invalid json")))
}

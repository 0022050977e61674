package progress

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/logging"
	"github.com/HartBrook/keyfit/internal/optimize"
)

// writeTimeout bounds a single store write so a slow store cannot stall a run.
const writeTimeout = 5 * time.Second

// RunHandle is the caller's view of a background run. It implements
// optimize.Reporter so the run can write its own progress.
type RunHandle struct {
	ID string

	store  Store
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time

	mu    sync.Mutex
	state State
	err   error
}

// StartOption configures Start.
type StartOption func(*RunHandle)

// WithLabel attaches a human-readable label, such as the input file.
func WithLabel(label string) StartOption {
	return func(h *RunHandle) {
		h.state.Label = label
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(l *zap.Logger) StartOption {
	return func(h *RunHandle) {
		h.logger = logging.OrNop(l)
	}
}

// Start runs fn in a new goroutine and returns its handle immediately. The
// run ends when fn returns; cancelling ctx or calling Cancel cancels the
// context fn receives.
func Start(ctx context.Context, store Store, fn func(ctx context.Context, h *RunHandle) error, opts ...StartOption) *RunHandle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &RunHandle{
		ID:     uuid.NewString(),
		store:  store,
		logger: zap.NewNop(),
		cancel: cancel,
		done:   make(chan struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	now := h.now()
	h.state.ID = h.ID
	h.state.Status = StatusRunning
	h.state.StartedAt = now
	h.state.UpdatedAt = now
	h.saveState(h.state)

	go func() {
		defer close(h.done)
		defer cancel()

		err := fn(runCtx, h)

		h.mu.Lock()
		h.err = err
		st := h.state
		h.mu.Unlock()

		st.UpdatedAt = h.now()
		switch {
		case err == nil:
			st.Status = StatusSucceeded
		case stderrors.Is(err, context.Canceled):
			st.Status = StatusCancelled
			st.Error = err.Error()
		default:
			st.Status = StatusFailed
			st.Error = err.Error()
		}
		h.saveState(st)
	}()
	return h
}

// Report implements optimize.Reporter.
func (h *RunHandle) Report(stage optimize.Stage, message string, snap *analysis.Snapshot) {
	ev := Event{Stage: string(stage), Message: message, At: h.now()}
	if snap != nil {
		ev.Summary = snap.Summary()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := h.store.Append(ctx, h.ID, ev); err != nil {
		h.logger.Warn("failed to append run event", zap.String("run", h.ID), zap.Error(err))
	}

	h.mu.Lock()
	h.state.Stage = ev.Stage
	h.state.UpdatedAt = ev.At
	st := h.state
	h.mu.Unlock()
	h.saveState(st)
}

// Done is closed when the run has finished and its final state is stored.
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes or ctx is done, and returns the run's error.
func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel asks the run to stop.
func (h *RunHandle) Cancel() {
	h.cancel()
}

func (h *RunHandle) saveState(st State) {
	h.mu.Lock()
	h.state = st
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := h.store.SetState(ctx, st); err != nil {
		h.logger.Warn("failed to store run state", zap.String("run", h.ID), zap.Error(err))
	}
}

// compile-time check
var _ optimize.Reporter = (*RunHandle)(nil)

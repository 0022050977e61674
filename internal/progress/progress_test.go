package progress

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/optimize"
)

func newMemoryStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(BadgerOptions{TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// exerciseStore runs the behavior every Store must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	id := "run-" + time.Now().Format("150405.000000000")

	_, err := s.State(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrRunNotFound))
	_, err = s.Events(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrRunNotFound))

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetState(ctx, State{
		ID: id, Label: "post.md", Status: StatusRunning, StartedAt: started, UpdatedAt: started,
	}))

	events, err := s.Events(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, events)

	for _, stage := range []string{"analyze", "llm_rewrite", "done"} {
		require.NoError(t, s.Append(ctx, id, Event{Stage: stage, Message: stage + " message", At: started}))
	}
	events, err = s.Events(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "analyze", events[0].Stage)
	assert.Equal(t, "done", events[2].Stage)
	assert.Equal(t, "llm_rewrite message", events[1].Message)

	require.NoError(t, s.SetState(ctx, State{
		ID: id, Label: "post.md", Status: StatusSucceeded, Stage: "done", StartedAt: started, UpdatedAt: started.Add(time.Minute),
	}))
	st, err := s.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, st.Status)
	assert.Equal(t, "post.md", st.Label)
	assert.Equal(t, "done", st.Stage)
	assert.True(t, st.StartedAt.Equal(started))

	states, err := s.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, listed := range states {
		if listed.ID == id {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBadgerStore(t *testing.T) {
	exerciseStore(t, newMemoryStore(t))
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadger(BadgerOptions{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.SetState(ctx, State{ID: "a", Status: StatusRunning}))
	require.NoError(t, s.Append(ctx, "a", Event{Stage: "analyze"}))
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerOptions{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Append(ctx, "a", Event{Stage: "done"}))

	events, err := s.Events(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "analyze", events[0].Stage)
	assert.Equal(t, "done", events[1].Stage)
}

func TestBadgerStore_ListOrder(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetState(ctx, State{ID: "old", StartedAt: base}))
	require.NoError(t, s.SetState(ctx, State{ID: "new", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Append(ctx, "new", Event{Stage: "analyze"}))

	states, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "new", states[0].ID)
	assert.Equal(t, "old", states[1].ID)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("KEYFIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("KEYFIT_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestStart_Succeeds(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	snap := &analysis.Snapshot{}

	h := Start(ctx, s, func(ctx context.Context, h *RunHandle) error {
		h.Report(optimize.StageAnalyze, "analyzing draft", snap)
		h.Report(optimize.StageDone, "finished", nil)
		return nil
	}, WithLabel("post.md"))

	require.NoError(t, h.Wait(ctx))
	assert.NotEmpty(t, h.ID)

	st, err := s.State(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, st.Status)
	assert.Equal(t, string(optimize.StageDone), st.Stage)
	assert.Equal(t, "post.md", st.Label)

	events, err := s.Events(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(optimize.StageAnalyze), events[0].Stage)
	assert.NotEmpty(t, events[0].Summary)
	assert.Empty(t, events[1].Summary)
}

func TestStart_Fails(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	boom := stderrors.New("provider down")

	h := Start(ctx, s, func(ctx context.Context, h *RunHandle) error {
		return boom
	})
	err := h.Wait(ctx)
	assert.ErrorIs(t, err, boom)

	st, err := s.State(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "provider down", st.Error)
	assert.True(t, st.Status.Finished())
}

func TestStart_Cancel(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	started := make(chan struct{})

	h := Start(ctx, s, func(ctx context.Context, h *RunHandle) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	h.Cancel()
	<-h.Done()

	st, err := s.State(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, st.Status)
}

func TestStart_ConcurrentRuns(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	handles := make([]*RunHandle, 8)
	for i := range handles {
		handles[i] = Start(ctx, s, func(ctx context.Context, h *RunHandle) error {
			for j := 0; j < 5; j++ {
				h.Report(optimize.StageForcedTerm, "iteration", nil)
			}
			return nil
		})
	}
	for _, h := range handles {
		wg.Add(1)
		go func(h *RunHandle) {
			defer wg.Done()
			assert.NoError(t, h.Wait(ctx))
		}(h)
	}
	wg.Wait()

	for _, h := range handles {
		events, err := s.Events(ctx, h.ID)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	}
	states, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, states, len(handles))
}

func TestWait_ContextDone(t *testing.T) {
	s := newMemoryStore(t)
	release := make(chan struct{})
	h := Start(context.Background(), s, func(ctx context.Context, h *RunHandle) error {
		<-release
		return nil
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Wait(ctx), context.Canceled)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	paths := &config.Paths{RunsDir: t.TempDir()}

	s, err := Open(ctx, config.ProgressConfig{Backend: "none"}, paths, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, config.ProgressConfig{Backend: "badger"}, paths, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.ProgressConfig{Backend: "kafka"}, paths, nil)
	assert.Error(t, err)

	assert.True(t, Persistent(config.ProgressConfig{Backend: "badger"}))
	assert.False(t, Persistent(config.ProgressConfig{Backend: "none"}))
}

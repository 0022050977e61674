package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/progress"
)

func newTestEnvironment(t *testing.T) *environment {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Constraints.Chars = analysis.Range{Min: 40, Max: 400}
	cfg.Constraints.Terms = analysis.Range{Min: 2, Max: 4}
	return &environment{
		cfg:    cfg,
		paths:  config.NewPathsWithOverrides(filepath.Join(dir, "config"), filepath.Join(dir, "cache")),
		logger: zap.NewNop(),
	}
}

func newMemoryStore(t *testing.T) progress.Store {
	t.Helper()
	store, err := progress.OpenBadger(progress.BadgerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

const testDraft = `Solar panels turn sunlight into electricity for the home.

Installing a solar panel takes planning and a sunny roof.

A good installer explains costs and savings clearly.
`

func TestOptimizeCmd_Flags(t *testing.T) {
	cmd := NewOptimizeCmd()

	assert.Equal(t, "optimize [draft]", cmd.Use)
	for _, name := range []string{"keyword", "morpheme", "min-chars", "max-chars", "min-terms", "max-terms",
		"max-attempts", "seed", "deterministic", "force", "no-cache", "output", "mobile", "json", "diff", "batch", "jobs"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}
	assert.Equal(t, "k", cmd.Flags().Lookup("keyword").Shorthand)
	assert.Equal(t, "-1", cmd.Flags().Lookup("max-attempts").DefValue)
	assert.Equal(t, "2", cmd.Flags().Lookup("jobs").DefValue)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, exp := range []string{"init", "optimize", "analyze", "format", "sync", "search", "status", "cache", "info", "version"} {
		assert.Contains(t, names, exp)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestBuildRequest(t *testing.T) {
	cfg := config.Default()
	cfg.Terms.Morphemes = []string{"패널"}

	t.Run("config values", func(t *testing.T) {
		req := buildRequest(cfg, "draft", job{Keyword: "태양광 패널"}, &optimizeOptions{maxAttempts: -1})

		assert.Equal(t, "draft", req.Draft)
		assert.Equal(t, "태양광 패널", req.Keyword)
		assert.Equal(t, config.DefaultCharRange, req.CharRange)
		assert.Equal(t, config.DefaultTermRange, req.TermRange)
		assert.Equal(t, config.DefaultMaxAttempts, req.MaxAttempts)
		assert.Equal(t, []string{"패널"}, req.Morphemes)
	})

	t.Run("flag overrides", func(t *testing.T) {
		opts := &optimizeOptions{
			minChars: 500, maxChars: 900,
			maxTerms:      8,
			maxAttempts:   0,
			deterministic: true,
			force:         true,
		}
		req := buildRequest(cfg, "draft", job{Keyword: "k", Morphemes: []string{"태양광"}}, opts)

		assert.Equal(t, analysis.Range{Min: 500, Max: 900}, req.CharRange)
		assert.Equal(t, analysis.Range{Min: config.DefaultTermRange.Min, Max: 8}, req.TermRange)
		assert.Zero(t, req.MaxAttempts)
		assert.Equal(t, []string{"패널", "태양광"}, req.Morphemes)
		assert.True(t, req.Deterministic)
		assert.True(t, req.Force)
	})

	t.Run("does not alias config morphemes", func(t *testing.T) {
		_ = buildRequest(cfg, "draft", job{Keyword: "k", Morphemes: []string{"x"}}, &optimizeOptions{maxAttempts: -1})
		assert.Equal(t, []string{"패널"}, cfg.Terms.Morphemes)
	})
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "post.fit.md", defaultOutputPath("post.md"))
	assert.Equal(t, filepath.Join("drafts", "a.fit.txt"), defaultOutputPath(filepath.Join("drafts", "a.txt")))
	assert.Equal(t, "notes.fit", defaultOutputPath("notes"))
}

func TestRequestLimiter(t *testing.T) {
	assert.Nil(t, requestLimiter(0))
	assert.Nil(t, requestLimiter(-5))

	l := requestLimiter(60)
	require.NotNil(t, l)
	assert.InDelta(t, 1.0, float64(l.Limit()), 1e-9)
	assert.Equal(t, 6, l.Burst())

	assert.Equal(t, 1, requestLimiter(5).Burst())
}

func TestTeeReporter(t *testing.T) {
	var a, b []optimize.Stage
	ra := optimize.ReporterFunc(func(s optimize.Stage, _ string, _ *analysis.Snapshot) { a = append(a, s) })
	rb := optimize.ReporterFunc(func(s optimize.Stage, _ string, _ *analysis.Snapshot) { b = append(b, s) })

	tee := teeReporter(ra, nil, rb)
	tee.Report(optimize.StageAnalyze, "", nil)
	tee.Report(optimize.StageDone, "", nil)

	assert.Equal(t, []optimize.Stage{optimize.StageAnalyze, optimize.StageDone}, a)
	assert.Equal(t, a, b)
}

func TestOptimizeTracked(t *testing.T) {
	env := newTestEnvironment(t)
	store := newMemoryStore(t)
	ctx := context.Background()

	optimizer, err := env.newOptimizer(optimizerOptions{deterministic: true, seed: 7, seeded: true})
	require.NoError(t, err)

	req := buildRequest(env.cfg, testDraft, job{Keyword: "solar panel"}, &optimizeOptions{deterministic: true, maxAttempts: -1})
	res, runID, err := optimizeTracked(ctx, env, optimizer, store, req, "post.md")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, res.Satisfied, !res.Infeasible)

	st, err := store.State(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusSucceeded, st.Status)
	assert.Equal(t, "post.md", st.Label)

	events, err := store.Events(ctx, runID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, string(optimize.StageAnalyze), events[0].Stage)
	assert.Equal(t, string(optimize.StageDone), events[len(events)-1].Stage)
}

func TestOptimizeTracked_InvalidRequest(t *testing.T) {
	env := newTestEnvironment(t)
	store := newMemoryStore(t)
	ctx := context.Background()

	optimizer, err := env.newOptimizer(optimizerOptions{deterministic: true})
	require.NoError(t, err)

	req := buildRequest(env.cfg, testDraft, job{Keyword: ""}, &optimizeOptions{deterministic: true, maxAttempts: -1})
	_, runID, err := optimizeTracked(ctx, env, optimizer, store, req, "post.md")
	require.Error(t, err)

	st, err := store.State(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusFailed, st.Status)
}

func TestReadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(path, []byte(testDraft), 0644))

	got, err := readDraft(path)
	require.NoError(t, err)
	assert.Equal(t, testDraft, got)

	_, err = readDraft(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestDisplayDiff(t *testing.T) {
	var b strings.Builder
	displayDiff(&b, "one\ntwo\nthree", "one\n2\nthree")

	out := b.String()
	assert.Contains(t, out, "two")
	assert.Contains(t, out, "2")
	assert.NotContains(t, out, "one\n")
}

// Package integration runs keyfit end to end against isolated directories.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/progress"
	"github.com/HartBrook/keyfit/internal/style"
)

// TestEnv provides an isolated test environment with overridden paths.
type TestEnv struct {
	t         *testing.T
	RootDir   string        // t.TempDir() root
	ConfigDir string        // ~/.config/keyfit
	CacheDir  string        // ~/.cache/keyfit
	Paths     *config.Paths // Configured paths pointing to temp dirs
}

// NewTestEnv creates an isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	rootDir := t.TempDir()
	configDir := filepath.Join(rootDir, "home", ".config", "keyfit")
	cacheDir := filepath.Join(rootDir, "home", ".cache", "keyfit")

	for _, dir := range []string{configDir, cacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return &TestEnv{
		t:         t,
		RootDir:   rootDir,
		ConfigDir: configDir,
		CacheDir:  cacheDir,
		Paths:     config.NewPathsWithOverrides(configDir, cacheDir),
	}
}

// SetupConfig writes config.yaml.
func (e *TestEnv) SetupConfig(cfg *config.Config) error {
	return config.SaveTo(cfg, e.Paths.ConfigFile)
}

// LoadConfig reads config.yaml back the way the CLI does.
func (e *TestEnv) LoadConfig() (*config.Config, error) {
	return config.LoadOrDefault(e.Paths.ConfigFile)
}

// SetupStylePack caches a style pack as if it had been synced.
func (e *TestEnv) SetupStylePack(owner, repo, content string) error {
	return cache.New(e.Paths).Write(owner, repo, content, &cache.Metadata{
		Owner:       owner,
		Repo:        repo,
		Path:        config.StyleFileName,
		LastFetched: time.Now(),
	})
}

// scripted replays canned model responses; the last one repeats.
func scripted(responses []string) llm.Generator {
	i := 0
	return llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		out := responses[min(i, len(responses)-1)]
		i++
		return out, nil
	})
}

// NewOptimizer wires an optimizer from the environment's config and cached
// style pack. A nil generator leaves the model stage off.
func (e *TestEnv) NewOptimizer(cfg *config.Config, gen llm.Generator, seed uint64) (*optimize.Optimizer, error) {
	pack, err := style.Load(cfg, cache.New(e.Paths))
	if err != nil {
		return nil, err
	}

	opts := []optimize.Option{
		optimize.WithMarker(cfg.References.Marker),
		optimize.WithTolerance(cfg.Constraints.Tolerance),
		optimize.WithForcedIterations(cfg.Constraints.ForcedIterations),
		optimize.WithBudget(cfg.Constraints.BudgetDuration()),
		optimize.WithSeed(seed),
		optimize.WithLogger(zaptest.NewLogger(e.t)),
	}
	if pack != nil {
		opts = append(opts, optimize.WithStyle(pack.PoolOver(forced.DefaultPool()), pack.Templates, pack.Synonyms))
	}
	if cfg.Cache.Results {
		opts = append(opts, optimize.WithCache(optimize.NewOptimizationCache(e.Paths)))
	}
	if gen != nil {
		opts = append(opts, optimize.WithGenerator(gen, "scripted"))
	}
	return optimize.NewOptimizer(opts...), nil
}

// RunFixture optimizes a fixture's draft as a tracked run and returns the
// result together with the run's stored events.
func (e *TestEnv) RunFixture(f *Fixture) (*optimize.Result, []progress.Event, error) {
	cfg, err := f.Setup.Config.ToConfig()
	if err != nil {
		return nil, nil, err
	}
	if f.Setup.Style != nil {
		owner, repo, err := config.ParseRepo(f.Setup.Style.Source)
		if err != nil {
			return nil, nil, err
		}
		if err := e.SetupStylePack(owner, repo, f.Setup.Style.Pack); err != nil {
			return nil, nil, err
		}
		cfg.Style.Source = f.Setup.Style.Source
	}
	if err := e.SetupConfig(cfg); err != nil {
		return nil, nil, err
	}
	if cfg, err = e.LoadConfig(); err != nil {
		return nil, nil, err
	}

	var gen llm.Generator
	if len(f.Setup.Responses) > 0 {
		gen = scripted(f.Setup.Responses)
	}
	optimizer, err := e.NewOptimizer(cfg, gen, f.Setup.Seed)
	if err != nil {
		return nil, nil, err
	}

	store, err := progress.OpenBadger(progress.BadgerOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	req := optimize.Request{
		Draft:       f.Setup.Draft,
		Keyword:     f.Setup.Keyword,
		CharRange:   cfg.Constraints.Chars,
		TermRange:   cfg.Constraints.Terms,
		MaxAttempts: cfg.Constraints.MaxAttempts,
		Morphemes:   f.Setup.Morphemes,
	}

	ctx := context.Background()
	var res *optimize.Result
	h := progress.Start(ctx, store, func(ctx context.Context, h *progress.RunHandle) error {
		req.Progress = h
		var err error
		res, err = optimizer.Optimize(ctx, req)
		return err
	}, progress.WithLabel(f.Name))
	if err := h.Wait(ctx); err != nil {
		return nil, nil, err
	}

	events, err := store.Events(ctx, h.ID)
	if err != nil {
		return nil, nil, err
	}
	return res, events, nil
}

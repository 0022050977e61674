package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/HartBrook/keyfit/internal/format"
	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/progress"
)

// manifest is the batch file format.
type manifest struct {
	Jobs []job `yaml:"jobs"`
}

// batchOutcome is the result of one batch job.
type batchOutcome struct {
	job    job
	runID  string
	result *optimize.Result
	err    error
}

// loadManifest reads a batch manifest. Relative paths are resolved against
// the manifest's directory, and jobs without an output get one next to the draft.
func loadManifest(path string) ([]job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("manifest %s has no jobs", path)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range m.Jobs {
		j := &m.Jobs[i]
		if j.Draft == "" {
			return nil, fmt.Errorf("job %d: draft is required", i+1)
		}
		j.Draft = resolve(j.Draft)
		j.Output = resolve(j.Output)
		if j.Output == "" {
			j.Output = defaultOutputPath(j.Draft)
		}
	}
	return m.Jobs, nil
}

func runBatch(ctx context.Context, env *environment, opts *optimizeOptions) error {
	jobs, err := loadManifest(opts.batch)
	if err != nil {
		return err
	}

	optimizer, err := env.newOptimizer(optimizerOptions{deterministic: opts.deterministic, seed: opts.seed, seeded: opts.seeded})
	if err != nil {
		return err
	}

	store, err := progress.Open(ctx, env.cfg.Progress, env.paths, env.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Optimizing %d drafts (%d at a time)...\n\n", len(jobs), max(opts.jobs, 1))
	outcomes := optimizeBatch(ctx, env, optimizer, store, jobs, opts)

	failed := 0
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			failed++
			printError("%s: %v", o.job.Draft, o.err)
		case o.result.Satisfied:
			printSuccess("%s → %s", o.job.Draft, o.job.Output)
		default:
			printWarning("%s → %s %s", o.job.Draft, o.job.Output, dim("(best effort)"))
		}
		if o.result != nil {
			printInfo("Result", o.result.Snapshot.Summary())
		}
		if progress.Persistent(env.cfg.Progress) && o.runID != "" {
			printInfo("Run", o.runID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

// optimizeBatch runs jobs with bounded concurrency. A failing job does not
// stop the others; outcomes keep manifest order.
func optimizeBatch(ctx context.Context, env *environment, optimizer *optimize.Optimizer, store progress.Store, jobs []job, opts *optimizeOptions) []batchOutcome {
	outcomes := make([]batchOutcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))

	var mu sync.Mutex
	for i, j := range jobs {
		g.Go(func() error {
			out := batchOutcome{job: j}
			defer func() {
				mu.Lock()
				outcomes[i] = out
				mu.Unlock()
			}()

			draft, err := readDraft(j.Draft)
			if err != nil {
				out.err = err
				return nil
			}
			req := buildRequest(env.cfg, draft, j, opts)
			out.result, out.runID, out.err = optimizeTracked(ctx, env, optimizer, store, req, j.Draft)
			if out.err != nil {
				env.logger.Warn("batch job failed", append(logJob(j), zap.Error(out.err))...)
				return nil
			}

			text := out.result.Text
			if opts.mobile {
				text = format.ForMobile(text)
			}
			if err := os.MkdirAll(filepath.Dir(j.Output), 0755); err != nil {
				out.err = fmt.Errorf("failed to create output directory: %w", err)
				return nil
			}
			if err := os.WriteFile(j.Output, []byte(text), 0644); err != nil {
				out.err = fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

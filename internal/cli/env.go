package cli

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/logging"
	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/style"
	"github.com/HartBrook/keyfit/internal/substitute"
	"github.com/HartBrook/keyfit/internal/terms"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

var globals = &globalOptions{}

// environment is the resolved config, paths and logger of one invocation.
type environment struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *zap.Logger
}

func loadEnvironment() (*environment, error) {
	paths := config.NewPaths()
	path := globals.configPath
	if path == "" {
		path = paths.ConfigFile
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(globals.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &environment{cfg: cfg, paths: paths, logger: logger}, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
}

// tokenizer returns the phrase tokenizer configured under terms.tokens.
func (e *environment) tokenizer() terms.Tokenizer {
	if len(e.cfg.Terms.Tokens) == 0 {
		return terms.SpaceTokenizer{}
	}
	return terms.StaticTokenizer{Table: e.cfg.Terms.Tokens, Fallback: terms.SpaceTokenizer{}}
}

// generator builds the configured provider client wrapped with retries and
// rate limiting. It returns the model name alongside for cache keys.
func (e *environment) generator() (llm.Generator, string, error) {
	p := e.cfg.Provider
	clientOpts := []llm.ClientOption{llm.WithModel(p.Model), llm.WithBaseURL(p.BaseURL)}

	var (
		base  llm.Generator
		model string
	)
	switch p.Name {
	case "openai":
		c, err := llm.NewOpenAIClient(clientOpts...)
		if err != nil {
			return nil, "", err
		}
		base, model = c, c.Model()
	default:
		c, err := llm.NewAnthropicClient(clientOpts...)
		if err != nil {
			return nil, "", err
		}
		base, model = c, c.Model()
	}

	retryOpts := []llm.RetryOption{
		llm.WithMaxRetries(p.MaxRetries),
		llm.WithRetryDelay(p.RetryDelayDuration()),
		llm.WithRetryLogger(e.logger),
	}
	if limiter := requestLimiter(p.RequestsPerMinute); limiter != nil {
		retryOpts = append(retryOpts, llm.WithLimiter(limiter))
	}
	return llm.NewRetrying(base, retryOpts...), model, nil
}

// requestLimiter turns a requests-per-minute setting into a limiter. Zero
// means unlimited.
func requestLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	burst := int(math.Max(1, float64(perMinute)/10))
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
}

// optimizerOptions controls how newOptimizer wires the pipeline.
type optimizerOptions struct {
	deterministic bool
	seed          uint64
	seeded        bool
}

// newOptimizer wires config, style pack, provider and cache into an Optimizer.
func (e *environment) newOptimizer(opts optimizerOptions) (*optimize.Optimizer, error) {
	cfg := e.cfg
	pack, err := style.Load(cfg, cache.New(e.paths))
	if err != nil {
		return nil, err
	}
	if pack != nil {
		e.logger.Debug("using style pack", zap.String("name", pack.Name))
	}

	optOpts := []optimize.Option{
		optimize.WithTokenizer(e.tokenizer()),
		optimize.WithMarker(cfg.References.Marker),
		optimize.WithTolerance(cfg.Constraints.Tolerance),
		optimize.WithForcedIterations(cfg.Constraints.ForcedIterations),
		optimize.WithBudget(cfg.Constraints.BudgetDuration()),
		optimize.WithLogger(e.logger),
	}
	if pack != nil {
		optOpts = append(optOpts, optimize.WithStyle(pack.PoolOver(forced.DefaultPool()), pack.Templates, pack.Synonyms))
	}
	if opts.seeded {
		optOpts = append(optOpts, optimize.WithSeed(opts.seed))
	}
	if cfg.Cache.Results {
		optOpts = append(optOpts, optimize.WithCache(optimize.NewOptimizationCache(e.paths)))
	}

	if !opts.deterministic {
		gen, model, err := e.generator()
		if err != nil {
			return nil, err
		}
		optOpts = append(optOpts, optimize.WithGenerator(gen, model))
		if cfg.Provider.Substitutions {
			var fallback forced.Pool = forced.DefaultPool()
			if pack != nil {
				fallback = pack.PoolOver(forced.DefaultPool())
			}
			optOpts = append(optOpts, optimize.WithSubstitutes(substitute.New(gen, fallback, e.logger)))
		}
	}

	return optimize.NewOptimizer(optOpts...), nil
}

// contextOrBackground guards commands invoked without a context in tests.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

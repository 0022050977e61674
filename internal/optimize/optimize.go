// Package optimize runs the full fitting pipeline: analysis, bounded LLM
// rewrites, forced adjustment and a final repetition sweep.
package optimize

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/forced"
	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/logging"
	"github.com/HartBrook/keyfit/internal/prompt"
	"github.com/HartBrook/keyfit/internal/rewrite"
	"github.com/HartBrook/keyfit/internal/substitute"
	"github.com/HartBrook/keyfit/internal/terms"
)

// Defaults for the forced stage.
const (
	DefaultTolerance        = 50
	DefaultForcedIterations = 3
)

// Optimizer handles the optimization pipeline. It holds no per-run state and
// may serve concurrent runs.
type Optimizer struct {
	generator        llm.Generator
	model            string
	tokenizer        terms.Tokenizer
	substitutes      *substitute.Generator
	pool             forced.StaticPool
	templates        forced.Templates
	synonyms         map[string][]string
	marker           string
	tolerance        int
	forcedIterations int
	budget           time.Duration
	seed             uint64
	seeded           bool
	cache            *OptimizationCache
	logger           *zap.Logger
	now              func() time.Time
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithGenerator enables the rewrite stage. model only feeds the cache key.
func WithGenerator(gen llm.Generator, model string) Option {
	return func(o *Optimizer) {
		o.generator = gen
		o.model = model
	}
}

// WithTokenizer sets how tracked terms are derived from the keyword.
func WithTokenizer(t terms.Tokenizer) Option {
	return func(o *Optimizer) {
		if t != nil {
			o.tokenizer = t
		}
	}
}

// WithSubstitutes asks g for synonyms of overused terms during the rewrite stage.
func WithSubstitutes(g *substitute.Generator) Option {
	return func(o *Optimizer) {
		o.substitutes = g
	}
}

// WithStyle sets the substitution pool, forced-edit templates and prompt synonyms.
func WithStyle(pool forced.StaticPool, templates forced.Templates, synonyms map[string][]string) Option {
	return func(o *Optimizer) {
		o.pool = pool
		o.templates = templates
		o.synonyms = synonyms
	}
}

// WithMarker sets the references heading.
func WithMarker(marker string) Option {
	return func(o *Optimizer) {
		if marker != "" {
			o.marker = marker
		}
	}
}

// WithTolerance sets the half-width of the character band forced edits aim for.
func WithTolerance(n int) Option {
	return func(o *Optimizer) {
		if n >= 0 {
			o.tolerance = n
		}
	}
}

// WithForcedIterations bounds the forced char/term loop.
func WithForcedIterations(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.forcedIterations = n
		}
	}
}

// WithBudget bounds the wall-clock time of one run.
func WithBudget(d time.Duration) Option {
	return func(o *Optimizer) {
		o.budget = d
	}
}

// WithSeed makes forced edits reproducible.
func WithSeed(seed uint64) Option {
	return func(o *Optimizer) {
		o.seed = seed
		o.seeded = true
	}
}

// WithCache enables the on-disk result cache.
func WithCache(c *OptimizationCache) Option {
	return func(o *Optimizer) {
		o.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logging.OrNop(l)
	}
}

// NewOptimizer creates an Optimizer. Without WithGenerator only the forced
// stage runs.
func NewOptimizer(opts ...Option) *Optimizer {
	o := &Optimizer{
		tokenizer:        terms.SpaceTokenizer{},
		pool:             forced.DefaultPool(),
		templates:        forced.DefaultTemplates(),
		marker:           analysis.DefaultMarker,
		tolerance:        DefaultTolerance,
		forcedIterations: DefaultForcedIterations,
		logger:           zap.NewNop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the state of one optimization.
type run struct {
	o        *Optimizer
	req      Request
	analyzer analysis.Analyzer
	tracked  []terms.Tracked
	engine   *forced.Engine
	best     *analysis.Attempt
	result   *Result
	start    time.Time
	logger   *zap.Logger
}

// Optimize fits req.Draft to the requested bands. It fails only on invalid
// requests; every other problem is logged and the best text found so far is
// returned with Infeasible set when the constraints are not met.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tracked := terms.Derive(req.Keyword, o.tokenizer, req.Morphemes)
	if len(tracked) == 0 {
		return nil, errors.InvalidRequest([]string{fmt.Sprintf("keyword %q yields no term of at least %d characters", req.Keyword, terms.MinTermRunes)})
	}

	useCache := o.cache != nil && !req.NoCache
	key := RequestKey(req, o.model)
	if useCache && !req.Force {
		if res := o.fromCache(key, tracked); res != nil {
			report(req.Progress, StageDone, "cached result", &res.Snapshot)
			return res, nil
		}
	}

	seed := o.seed
	if !o.seeded {
		seed = forced.TimeSeed()
	}

	r := &run{
		o:       o,
		req:     req,
		tracked: tracked,
		start:   o.now(),
		result:  &Result{Terms: tracked, Seed: seed},
		logger:  o.logger.With(zap.String("keyword", req.Keyword)),
	}
	r.analyzer = analysis.Analyzer{
		Terms:     tracked,
		CharRange: req.CharRange,
		TermRange: req.TermRange,
		Marker:    o.marker,
	}

	// References are split off before cleanup so they are re-attached byte for byte.
	rawBody, refs := r.analyzer.Body(strings.ReplaceAll(req.Draft, "\r\n", "\n"))
	body, stats := Preprocess(rawBody)
	r.result.Preprocess = stats

	pool := o.pool
	if !req.Deterministic && req.MaxAttempts > 0 && o.generator != nil {
		pool = r.rewrite(ctx, body, pool)
	} else {
		r.analyzeDraft(body)
	}

	if !r.best.Snapshot.Satisfied() {
		r.engine = forced.New(
			forced.WithPool(pool),
			forced.WithTemplates(o.templates),
			forced.WithRand(forced.NewRand(seed)),
			forced.WithAvoid(terms.Texts(tracked)),
			forced.WithLogger(r.logger),
		)
		r.force()
		r.sweep()
	}

	res := r.finish(refs)
	if useCache {
		meta := &OptimizationMeta{
			OptimizedAt: o.now(),
			Keyword:     req.Keyword,
			Origin:      res.Origin,
			Satisfied:   res.Satisfied,
			Snapshot:    res.Snapshot,
			Model:       o.model,
			Seed:        seed,
		}
		if err := o.cache.Write(key, res.Text, meta); err != nil {
			o.logger.Debug("failed to write optimization cache", zap.Error(err))
		}
	}
	return res, nil
}

func (o *Optimizer) fromCache(key string, tracked []terms.Tracked) *Result {
	cached, meta, err := o.cache.Read(key)
	if err != nil || meta == nil || cached == "" {
		return nil
	}
	return &Result{
		Text:       cached,
		Snapshot:   meta.Snapshot,
		Origin:     meta.Origin,
		Satisfied:  meta.Satisfied,
		Infeasible: !meta.Satisfied,
		Terms:      tracked,
		FromCache:  true,
		Seed:       meta.Seed,
	}
}

func (r *run) analyzeDraft(body string) {
	snap := r.analyzer.Analyze(body)
	r.best = &analysis.Attempt{Text: body, Snapshot: snap, Origin: analysis.OriginDraft}
	r.result.Initial = snap
	r.report(StageAnalyze, "draft analyzed", &snap)
}

// rewrite runs the LLM stage and returns the pool the forced stage should use.
func (r *run) rewrite(ctx context.Context, body string, pool forced.StaticPool) forced.StaticPool {
	r.analyzeDraft(body)
	if r.best.Snapshot.Satisfied() {
		return pool
	}

	synonyms := r.o.synonyms
	if r.o.substitutes != nil {
		generated := r.o.substitutes.Resolve(ctx, r.req.Keyword, overused(r.best.Snapshot))
		pool = pool.Merge(generated)
		synonyms = mergeSynonyms(synonyms, generated.ByTerm)
	}

	opts := []rewrite.Option{
		rewrite.WithMaxAttempts(r.req.MaxAttempts),
		rewrite.WithLogger(r.logger),
		rewrite.WithObserver(func(round rewrite.Round) {
			msg := fmt.Sprintf("round %d finished", round.Index+1)
			if round.Err != "" {
				msg = fmt.Sprintf("round %d failed: %s", round.Index+1, round.Err)
			}
			r.report(StageRewrite, msg, round.Snapshot)
		}),
	}
	if r.o.budget > 0 {
		opts = append(opts, rewrite.WithBudget(r.remaining()))
	}

	driver := rewrite.NewDriver(r.o.generator, prompt.NewEscalating(r.req.Keyword, synonyms), opts...)
	outcome := driver.Rewrite(ctx, r.best.Text, r.analyzer)
	r.result.Rounds = outcome.Rounds
	if outcome.Aborted != nil {
		r.result.Aborted = outcome.Aborted.Error()
	}
	if outcome.Best.Better(r.best) {
		r.best = outcome.Best
	}
	return pool
}

// force alternates char and term enforcement on the working text, keeping
// whichever text the comparator prefers. Char enforcement only runs while the
// count is outside the char range.
func (r *run) force() {
	origin := analysis.OriginForced
	if r.best.Origin == analysis.OriginLLM {
		origin = analysis.OriginMixed
	}

	charTarget, tolerance := charBand(r.req.CharRange, r.o.tolerance)
	ordered := longestFirst(r.tracked)

	working := r.best.Text
	for i := 0; i < r.o.forcedIterations; i++ {
		if i > 0 && r.expired() {
			r.logger.Info("forced stage stopped by budget", zap.Int("iteration", i))
			break
		}

		text := working
		if !r.analyzer.Analyze(working).ValidCharCount {
			var crep forced.CharReport
			text, crep = r.engine.EnforceCharCount(working, charTarget, tolerance)
			r.result.CharReports = append(r.result.CharReports, crep)
			r.report(StageForcedChar, fmt.Sprintf("chars %d -> %d", crep.Before, crep.After), nil)
		}

		for _, t := range ordered {
			var trep forced.TermReport
			text, trep = r.engine.EnforceTermCount(text, t.Text, r.req.TermRange, terms.Containing(t.Text, r.tracked))
			r.result.TermReports = append(r.result.TermReports, trep)
			r.logger.Info("term enforced",
				zap.Int("iteration", i),
				zap.String("term", trep.Term),
				zap.Int("before", trep.Before),
				zap.Int("after", trep.After))
		}

		snap := r.analyzer.Analyze(text)
		r.report(StageForcedTerm, fmt.Sprintf("iteration %d", i+1), &snap)

		cand := &analysis.Attempt{Text: text, Snapshot: snap, Origin: origin, Index: i}
		if cand.Better(r.best) {
			r.best = cand
		}
		if snap.Satisfied() || text == working {
			break
		}
		working = text
	}
}

// sweep caps incidental repetition of untracked tokens and keeps the result
// unless the comparator prefers the text before it.
func (r *run) sweep() {
	text, reps := r.engine.LimitAll(r.best.Text, r.req.TermRange.Max, terms.Texts(r.tracked))
	r.result.Sweep = reps
	if len(reps) == 0 {
		return
	}

	snap := r.analyzer.Analyze(text)
	cand := &analysis.Attempt{Text: text, Snapshot: snap, Origin: r.best.Origin, Index: r.best.Index}
	if !r.best.Better(cand) {
		r.best = cand
	}
	r.report(StageLimitSweep, fmt.Sprintf("%d tokens capped", len(reps)), &snap)
}

func (r *run) finish(refs string) *Result {
	res := r.result
	res.Text = r.best.Text
	if refs != "" {
		res.Text = analysis.JoinReferences(r.best.Text, refs)
	}
	res.Snapshot = r.best.Snapshot
	res.Origin = r.best.Origin
	res.Satisfied = r.best.Snapshot.Satisfied()
	res.Infeasible = !res.Satisfied

	r.logger.Info("optimization finished",
		zap.String("origin", string(res.Origin)),
		zap.Bool("satisfied", res.Satisfied),
		zap.String("snapshot", res.Snapshot.Summary()),
		zap.Duration("elapsed", r.o.now().Sub(r.start)))
	r.report(StageDone, string(res.Origin), &res.Snapshot)
	return res
}

func (r *run) remaining() time.Duration {
	left := r.o.budget - r.o.now().Sub(r.start)
	if left <= 0 {
		// a non-positive budget would disable the driver's check
		return time.Nanosecond
	}
	return left
}

func (r *run) expired() bool {
	return r.o.budget > 0 && r.o.now().Sub(r.start) >= r.o.budget
}

func (r *run) report(stage Stage, message string, snap *analysis.Snapshot) {
	report(r.req.Progress, stage, message, snap)
}

func report(rep Reporter, stage Stage, message string, snap *analysis.Snapshot) {
	if rep != nil {
		rep.Report(stage, message, snap)
	}
}

// charBand returns the target and tolerance for char enforcement, keeping
// the band inside r.
func charBand(r analysis.Range, tolerance int) (target, tol int) {
	target = int(math.Round(r.Mid()))
	half := (r.Max - r.Min) / 2
	if tolerance > half {
		tolerance = half
	}
	return target, tolerance
}

func longestFirst(tracked []terms.Tracked) []terms.Tracked {
	out := append([]terms.Tracked(nil), tracked...)
	sort.SliceStable(out, func(i, j int) bool {
		return terms.RuneLen(out[i].Text) > terms.RuneLen(out[j].Text)
	})
	return out
}

func overused(snap analysis.Snapshot) []string {
	var out []string
	for _, tc := range snap.Terms {
		if tc.Count > snap.TermRange.Max {
			out = append(out, tc.Term.Text)
		}
	}
	return out
}

func mergeSynonyms(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = append(append([]string(nil), out[k]...), v...)
	}
	return out
}

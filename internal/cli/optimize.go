package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/format"
	"github.com/HartBrook/keyfit/internal/optimize"
	"github.com/HartBrook/keyfit/internal/progress"
)

type optimizeOptions struct {
	keyword       string
	morphemes     []string
	minChars      int
	maxChars      int
	minTerms      int
	maxTerms      int
	maxAttempts   int
	seed          uint64
	seeded        bool
	deterministic bool
	force         bool
	noCache       bool
	output        string
	mobile        bool
	jsonOut       bool
	showDiff      bool
	batch         string
	jobs          int
}

// NewOptimizeCmd creates the optimize command.
func NewOptimizeCmd() *cobra.Command {
	opts := &optimizeOptions{}

	cmd := &cobra.Command{
		Use:   "optimize [draft]",
		Short: "Fit a draft to its character and keyword targets",
		Long: `Rewrites a draft so its character count and keyword occurrence counts fall
inside the configured bands.

The optimization process:
1. Pre-processes the draft (normalizes whitespace, removes duplicate paragraphs)
2. Asks the configured model for rewrites (unless --deterministic)
3. Applies deterministic edits to whatever is still out of range
4. Caps every term at the band maximum and returns the best text found

The references section (starting at the configured marker heading) is never
counted or edited. Use - as the draft to read from stdin.

With --batch, reads a YAML manifest of jobs and runs them concurrently.`,
		Example: `  keyfit optimize post.md --keyword "태양광 패널"
  keyfit optimize post.md --keyword "solar panel" -o fitted.md
  keyfit optimize post.md --keyword "태양광 패널" --deterministic --seed 42
  keyfit optimize post.md --keyword "태양광 패널" --chars 1500-1800 --terms 10-12
  keyfit optimize --batch jobs.yaml --jobs 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			return runOptimize(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keyword, "keyword", "k", "", "Target keyword")
	cmd.Flags().StringSliceVar(&opts.morphemes, "morpheme", nil, "Extra term to track (repeatable)")
	cmd.Flags().IntVar(&opts.minChars, "min-chars", 0, "Minimum character count (0 = config)")
	cmd.Flags().IntVar(&opts.maxChars, "max-chars", 0, "Maximum character count (0 = config)")
	cmd.Flags().IntVar(&opts.minTerms, "min-terms", 0, "Minimum occurrences per term (0 = config)")
	cmd.Flags().IntVar(&opts.maxTerms, "max-terms", 0, "Maximum occurrences per term (0 = config)")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", -1, "Model rewrite rounds (-1 = config, 0 = none)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for deterministic edits (default: time-based)")
	cmd.Flags().BoolVar(&opts.deterministic, "deterministic", false, "Skip the model and only apply deterministic edits")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-optimize even if a cached result exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Skip cache read/write")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write optimized text to file")
	cmd.Flags().BoolVar(&opts.mobile, "mobile", false, "Wrap the output for mobile screens")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&opts.showDiff, "diff", false, "Show before/after diff")
	cmd.Flags().StringVar(&opts.batch, "batch", "", "YAML manifest of jobs to run")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 2, "Concurrent jobs in batch mode")

	return cmd
}

// job is one draft to optimize.
type job struct {
	Draft     string   `yaml:"draft"`
	Keyword   string   `yaml:"keyword"`
	Output    string   `yaml:"output,omitempty"`
	Morphemes []string `yaml:"morphemes,omitempty"`
}

func runOptimize(ctx context.Context, args []string, opts *optimizeOptions) error {
	ctx = contextOrBackground(ctx)

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	if opts.batch != "" {
		if len(args) > 0 {
			return fmt.Errorf("--batch cannot be combined with a draft argument")
		}
		return runBatch(ctx, env, opts)
	}
	if len(args) == 0 {
		return fmt.Errorf("a draft file (or - for stdin) is required")
	}

	draft, err := readDraft(args[0])
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

	j := job{Draft: args[0], Keyword: opts.keyword, Output: opts.output, Morphemes: opts.morphemes}
	req := buildRequest(env.cfg, draft, j, opts)
	if globals.verbose {
		req.Progress = stderrReporter(os.Stderr)
	}

	res, runID, err := optimizeTracked(ctx, env, optimizer, store, req, j.Draft)
	if err != nil {
		return err
	}
	if progress.Persistent(env.cfg.Progress) {
		fmt.Fprintf(os.Stderr, "%s\n", dim("run "+runID))
	}

	text := res.Text
	if opts.mobile {
		text = format.ForMobile(text)
	}

	if opts.jsonOut {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if opts.output == "" {
		displayOptimizationResult(os.Stderr, res)
		if opts.showDiff {
			displayDiff(os.Stderr, draft, res.Text)
		}
		fmt.Print(text)
		return nil
	}

	if err := os.WriteFile(opts.output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	displayOptimizationResult(os.Stdout, res)
	if opts.showDiff {
		displayDiff(os.Stdout, draft, res.Text)
	}
	fmt.Println()
	printSuccess("Wrote optimized text to %s", opts.output)
	return nil
}

// optimizeTracked runs one request as a tracked background run and waits for it.
func optimizeTracked(ctx context.Context, env *environment, optimizer *optimize.Optimizer, store progress.Store, req optimize.Request, label string) (*optimize.Result, string, error) {
	var res *optimize.Result
	h := progress.Start(ctx, store, func(ctx context.Context, h *progress.RunHandle) error {
		r := req
		r.Progress = teeReporter(h, req.Progress)
		var err error
		res, err = optimizer.Optimize(ctx, r)
		return err
	}, progress.WithLabel(label), progress.WithLogger(env.logger))

	if err := h.Wait(ctx); err != nil {
		return nil, h.ID, err
	}
	return res, h.ID, nil
}

// buildRequest merges flag overrides onto configured constraints.
func buildRequest(cfg *config.Config, draft string, j job, opts *optimizeOptions) optimize.Request {
	chars := cfg.Constraints.Chars
	if opts.minChars > 0 {
		chars.Min = opts.minChars
	}
	if opts.maxChars > 0 {
		chars.Max = opts.maxChars
	}
	termRange := cfg.Constraints.Terms
	if opts.minTerms > 0 {
		termRange.Min = opts.minTerms
	}
	if opts.maxTerms > 0 {
		termRange.Max = opts.maxTerms
	}
	attempts := cfg.Constraints.MaxAttempts
	if opts.maxAttempts >= 0 {
		attempts = opts.maxAttempts
	}

	morphemes := append([]string{}, cfg.Terms.Morphemes...)
	morphemes = append(morphemes, j.Morphemes...)

	return optimize.Request{
		Draft:         draft,
		Keyword:       j.Keyword,
		CharRange:     chars,
		TermRange:     termRange,
		MaxAttempts:   attempts,
		Morphemes:     morphemes,
		Deterministic: opts.deterministic,
		Force:         opts.force,
		NoCache:       opts.noCache,
	}
}

func readDraft(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read draft: %w", err)
	}
	return string(data), nil
}

// teeReporter forwards progress to every non-nil reporter.
func teeReporter(reps ...optimize.Reporter) optimize.Reporter {
	return optimize.ReporterFunc(func(stage optimize.Stage, message string, snap *analysis.Snapshot) {
		for _, r := range reps {
			if r != nil {
				r.Report(stage, message, snap)
			}
		}
	})
}

func stderrReporter(w io.Writer) optimize.Reporter {
	return optimize.ReporterFunc(func(stage optimize.Stage, message string, snap *analysis.Snapshot) {
		fmt.Fprintf(w, "  %s %s\n", dim(fmt.Sprintf("[%s]", stage)), message)
	})
}

// displayOptimizationResult shows the final counts of a run.
func displayOptimizationResult(w io.Writer, res *optimize.Result) {
	snap := res.Snapshot
	fmt.Fprintln(w)

	charMark := success("ok")
	if !snap.ValidCharCount {
		charMark = danger("out of range")
	}
	fmt.Fprintf(w, "  %s: %d → %d (%s) %s\n", dim("Characters"), res.Initial.CharCount, snap.CharCount, snap.CharRange, charMark)

	fmt.Fprintf(w, "  %s (%s):\n", dim("Terms"), snap.TermRange)
	for i, tc := range snap.Terms {
		before := 0
		if i < len(res.Initial.Terms) {
			before = res.Initial.Terms[i].Count
		}
		mark := success("ok")
		if !tc.Valid {
			mark = danger("out of range")
		}
		fmt.Fprintf(w, "    %-16s %3d → %3d %s\n", tc.Term.Text, before, tc.Count, mark)
	}

	if globals.verbose && !res.FromCache {
		p := res.Preprocess
		if p.BlankLinesRemoved+p.DuplicatesRemoved+p.LinesTrimmed > 0 {
			fmt.Fprintf(w, "  %s: %d blank lines, %d duplicates, %d trimmed\n",
				dim("Pre-processing"), p.BlankLinesRemoved, p.DuplicatesRemoved, p.LinesTrimmed)
		}
		if len(res.Rounds) > 0 {
			fmt.Fprintf(w, "  %s: %d\n", dim("Model rounds"), len(res.Rounds))
		}
		fmt.Fprintf(w, "  %s: %d\n", dim("Seed"), res.Seed)
	}
	if res.Aborted != "" {
		fmt.Fprintf(w, "  %s %s\n", warningIcon, warning("model stage aborted: "+res.Aborted))
	}

	fmt.Fprintln(w)
	switch {
	case res.Satisfied:
		fmt.Fprintf(w, "%s All constraints met %s\n", successIcon, dim("("+string(res.Origin)+")"))
	default:
		fmt.Fprintf(w, "%s Best effort, constraints not fully met %s\n", warningIcon, dim("("+string(res.Origin)+")"))
	}
	if res.FromCache {
		fmt.Fprintf(w, "  %s\n", dim("(from cache - use --force to re-optimize)"))
	}
}

// displayDiff shows a simple diff between original and optimized content.
func displayDiff(w io.Writer, original, optimized string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim("--- original"))
	fmt.Fprintln(w, dim("+++ optimized"))
	fmt.Fprintln(w)

	origLines := strings.Split(original, "\n")
	optLines := strings.Split(optimized, "\n")

	shown := 0
	maxDiff := 20
	maxLen := max(len(origLines), len(optLines))

	for i := 0; i < maxLen && shown < maxDiff; i++ {
		origLine, optLine := "", ""
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(optLines) {
			optLine = optLines[i]
		}
		if origLine == optLine {
			continue
		}
		if i < len(origLines) {
			fmt.Fprintf(w, "%s %s\n", danger("-"), origLine)
		}
		if i < len(optLines) {
			fmt.Fprintf(w, "%s %s\n", success("+"), optLine)
		}
		shown++
	}

	if shown >= maxDiff {
		fmt.Fprintf(w, "\n%s\n", dim("(diff truncated, showing first 20 changes)"))
	}
}

// defaultOutputPath places the result next to the draft: post.md -> post.fit.md.
func defaultOutputPath(draft string) string {
	ext := filepath.Ext(draft)
	return strings.TrimSuffix(draft, ext) + ".fit" + ext
}

// logJob attaches job identity to log lines.
func logJob(j job) []zap.Field {
	return []zap.Field{zap.String("draft", j.Draft), zap.String("keyword", j.Keyword)}
}

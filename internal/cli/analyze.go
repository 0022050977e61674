package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/terms"
)

type analyzeOptions struct {
	keyword   string
	morphemes []string
	jsonOut   bool
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <draft>",
		Short: "Show character and keyword counts without editing",
		Long: `Measures a draft against the configured character and term bands.

Nothing is rewritten. The references section is excluded from counting.`,
		Example: `  keyfit analyze post.md --keyword "태양광 패널"
  keyfit analyze post.md --keyword "solar panel" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keyword, "keyword", "k", "", "Target keyword")
	cmd.Flags().StringSliceVar(&opts.morphemes, "morpheme", nil, "Extra term to track (repeatable)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the snapshot as JSON")

	return cmd
}

func runAnalyze(path string, opts *analyzeOptions) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	draft, err := readDraft(path)
	if err != nil {
		return err
	}

	snap, err := analyzeDraft(env, draft, opts)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("  %s: %d (%s)\n", dim("Characters"), snap.CharCount, snap.CharRange)
	fmt.Printf("  %s (%s):\n", dim("Terms"), snap.TermRange)
	for _, tc := range snap.Terms {
		mark := success("ok")
		if !tc.Valid {
			delta := snap.TermRange.Delta(tc.Count)
			mark = danger(fmt.Sprintf("%+d", delta))
		}
		fmt.Printf("    %-16s %3d %s %s\n", tc.Term.Text, tc.Count, dim(string(tc.Term.Role)), mark)
	}
	fmt.Println()
	if snap.Satisfied() {
		printSuccess("All constraints met")
	} else {
		printWarning("Constraints not met")
	}
	return nil
}

// analyzeDraft measures draft with the configured bands and tokenizer.
func analyzeDraft(env *environment, draft string, opts *analyzeOptions) (analysis.Snapshot, error) {
	if terms.CleanKeyword(opts.keyword) == "" {
		return analysis.Snapshot{}, errors.InvalidRequest([]string{"keyword is required"})
	}
	extra := append([]string{}, env.cfg.Terms.Morphemes...)
	extra = append(extra, opts.morphemes...)

	a := analysis.Analyzer{
		Terms:     terms.Derive(opts.keyword, env.tokenizer(), extra),
		CharRange: env.cfg.Constraints.Chars,
		TermRange: env.cfg.Constraints.Terms,
		Marker:    env.cfg.References.Marker,
	}
	return a.Analyze(draft), nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/format"
)

type formatOptions struct {
	width     int
	refs      bool
	citations bool
	output    string
}

// NewFormatCmd creates the format command.
func NewFormatCmd() *cobra.Command {
	opts := &formatOptions{}

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Wrap a post for mobile screens or list its references",
		Long: `Wraps prose lines so each holds at most --width visible characters.
Headings, list items and blank lines are kept as they are.

With --refs, prints the links of the references section as JSON instead.`,
		Example: `  keyfit format post.fit.md
  keyfit format post.fit.md --width 20 -o mobile.md
  keyfit format post.fit.md --refs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", format.MobileWidth, "Visible characters per line")
	cmd.Flags().BoolVar(&opts.refs, "refs", false, "Print references as JSON")
	cmd.Flags().BoolVar(&opts.citations, "strip-citations", false, "Remove [n] citation marks")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write formatted text to file")

	return cmd
}

func runFormat(path string, opts *formatOptions) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	text, err := readDraft(path)
	if err != nil {
		return err
	}

	if opts.refs {
		refs := format.ExtractReferences(text, env.cfg.References.Marker)
		if refs == nil {
			refs = []format.Reference{}
		}
		data, err := json.MarshalIndent(refs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode references: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if opts.citations {
		text = format.StripCitationMarks(text)
	}
	text = format.Wrap(text, opts.width)

	if opts.output == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(opts.output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	printSuccess("Wrote formatted text to %s", opts.output)
	return nil
}

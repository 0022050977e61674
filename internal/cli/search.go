package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/github"
)

const (
	// searchTimeout is the maximum time allowed for search operations.
	searchTimeout = 30 * time.Second
)

type searchOptions struct {
	language string
	limit    int
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for public style packs",
		Long: `Search for public keyfit style packs on GitHub.

Searches for repositories with the 'keyfit-style' topic. Results are sorted
by star count. Use --lang to keep packs written for one language.`,
		Example: `  keyfit search                 # List all public style packs
  keyfit search travel          # Search for "travel" in name/description
  keyfit search --lang ko       # Korean packs only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runSearch(contextOrBackground(cmd.Context()), query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.language, "lang", "", "Filter by language")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum results to show")

	return cmd
}

func runSearch(ctx context.Context, query string, opts *searchOptions) error {
	fmt.Println("Searching for style packs...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	client, err := newGitHubClient()
	if err != nil {
		return err
	}

	results, err := client.SearchStyles(ctx, query)
	if err != nil {
		return err
	}

	if opts.language != "" {
		results = github.FilterByLanguage(results, opts.language)
	}

	if len(results) == 0 {
		fmt.Println("No style packs found matching your criteria.")
		fmt.Println()
		fmt.Println("Tips:")
		fmt.Println("  - Try a broader search query")
		fmt.Println("  - Remove the --lang filter")
		fmt.Printf("  - Repos must have the '%s' topic to be discoverable\n", github.StyleTopic)
		return nil
	}

	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}

	fmt.Printf("Found %d style packs:\n\n", len(results))

	for i, r := range results {
		fmt.Printf("  %d. %s", i+1, r.FullName())
		if r.Stars > 0 {
			fmt.Printf(" ★ %d", r.Stars)
		}
		fmt.Println()

		if r.Description != "" {
			fmt.Printf("     %s\n", truncate(r.Description, 65))
		}

		displayTopics := make([]string, 0, len(r.Topics))
		for _, t := range r.Topics {
			if t != github.StyleTopic {
				displayTopics = append(displayTopics, t)
			}
		}
		if len(displayTopics) > 0 {
			fmt.Printf("     %s\n", dim(joinTopics(displayTopics, 60)))
		}

		fmt.Println()
	}

	fmt.Println("Use one with:")
	fmt.Printf("  %s\n", info("keyfit init --style owner/repo"))

	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// joinTopics joins topics with commas, truncating if too long.
func joinTopics(topics []string, maxLen int) string {
	var b strings.Builder
	for i, t := range topics {
		if i > 0 {
			b.WriteString(", ")
		}
		if b.Len()+len(t) > maxLen {
			b.WriteString("...")
			break
		}
		b.WriteString(t)
	}
	return b.String()
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/github"
	"github.com/HartBrook/keyfit/internal/style"
)

type syncOptions struct {
	force   bool
	offline bool
	branch  string
}

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the configured style pack",
		Long: `Fetches keyfit-style.yaml from the repository named by style.source and
caches it locally. The style pack supplies substitution words and sentence
templates for the deterministic edit stage.

Unchanged packs are detected with the ETag of the previous fetch.`,
		Example: `  keyfit sync
  keyfit sync --force
  keyfit sync --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(contextOrBackground(cmd.Context()), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-fetch even if cache is fresh")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use cached version only, skip fetch")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch to fetch from (default: repository default)")

	return cmd
}

// styleFetcher is the part of the GitHub client sync needs.
type styleFetcher interface {
	FetchFile(ctx context.Context, owner, repo, path, branch, etag string) (*github.FetchResult, error)
}

// syncOutcome describes what a sync did.
type syncOutcome int

const (
	syncFresh syncOutcome = iota // cache within TTL, nothing fetched
	syncUnchanged
	syncUpdated
)

func runSync(ctx context.Context, opts *syncOptions) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	if env.cfg.Style.Source == "" {
		return errors.New(errors.ErrConfigInvalid, "no style source configured", "Set style.source to owner/repo in config, or run 'keyfit init'")
	}
	owner, repo, err := env.cfg.StyleOwnerRepo()
	if err != nil {
		return errors.InvalidRepo(env.cfg.Style.Source)
	}

	c := cache.New(env.paths)

	if opts.offline {
		meta, err := c.GetMetadata(owner, repo)
		if err != nil {
			return errors.CacheNotFound(owner + "/" + repo)
		}
		printSuccess("Using cached style pack from %s", meta.Age())
		return nil
	}

	client, err := newGitHubClient()
	if err != nil {
		return err
	}

	fmt.Printf("Fetching %s/%s...\n", owner, repo)
	outcome, meta, err := syncStyle(ctx, client, c, env.cfg, owner, repo, opts)
	if err != nil {
		return err
	}

	switch outcome {
	case syncFresh:
		printSuccess("Cache is fresh (%s)", meta.Age())
		fmt.Println("  Use --force to re-fetch anyway.")
	case syncUnchanged:
		printSuccess("Style pack unchanged")
	case syncUpdated:
		printSuccess("Synced style pack")
		printInfo("File", config.StyleFileName)
		if len(meta.SHA) >= 8 {
			printInfo("SHA", meta.SHA[:8])
		}
	}
	return nil
}

// syncStyle fetches the style pack into the cache unless the cached copy is
// fresh. A fetched pack must parse before it replaces the cached one.
func syncStyle(ctx context.Context, f styleFetcher, c *cache.Cache, cfg *config.Config, owner, repo string, opts *syncOptions) (syncOutcome, *cache.Metadata, error) {
	meta, metaErr := c.GetMetadata(owner, repo)
	if metaErr == nil && !opts.force && !meta.IsStale(cfg.Cache.TTLDuration()) {
		return syncFresh, meta, nil
	}

	etag := ""
	if metaErr == nil && !opts.force {
		etag = meta.ETag
	}

	result, err := f.FetchFile(ctx, owner, repo, config.StyleFileName, opts.branch, etag)
	if err != nil {
		return 0, nil, errors.StyleFetchFailed(owner+"/"+repo, err)
	}

	if result.NotModified {
		if err := c.Touch(owner, repo); err != nil {
			return 0, nil, fmt.Errorf("failed to update cache metadata: %w", err)
		}
		meta, _ = c.GetMetadata(owner, repo)
		return syncUnchanged, meta, nil
	}

	if _, err := style.Parse([]byte(result.Content)); err != nil {
		return 0, nil, err
	}

	meta = &cache.Metadata{
		Owner:       owner,
		Repo:        repo,
		Path:        config.StyleFileName,
		ETag:        result.ETag,
		SHA:         result.SHA,
		LastFetched: time.Now(),
	}
	if err := c.Write(owner, repo, result.Content, meta); err != nil {
		return 0, nil, fmt.Errorf("failed to write cache: %w", err)
	}
	return syncUpdated, meta, nil
}

// newGitHubClient tries go-gh's own auth first, then KEYFIT_GITHUB_TOKEN.
func newGitHubClient() (*github.Client, error) {
	client, err := github.NewClient()
	if err == nil {
		return client, nil
	}
	token := github.GetTokenFromEnv()
	if token == "" {
		return nil, errors.ProviderAuthFailed("GitHub", github.EnvGitHubToken)
	}
	return github.NewClientWithToken(token)
}

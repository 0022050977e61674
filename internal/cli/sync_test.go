package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/github"
)

// fakeFetcher serves one style pack and answers 304 when the ETag matches.
type fakeFetcher struct {
	content string
	etag    string
	err     error

	calls    int
	lastETag string
}

func (f *fakeFetcher) FetchFile(_ context.Context, owner, repo, path, branch, etag string) (*github.FetchResult, error) {
	f.calls++
	f.lastETag = etag
	if f.err != nil {
		return nil, f.err
	}
	if etag != "" && etag == f.etag {
		return &github.FetchResult{NotModified: true}, nil
	}
	return &github.FetchResult{Content: f.content, ETag: f.etag, SHA: "abc123def456"}, nil
}

const syncPack = `name: acme
pool:
  english: [this gadget]
`

func newSyncCache(t *testing.T) *cache.Cache {
	t.Helper()
	dir := t.TempDir()
	return cache.New(config.NewPathsWithOverrides(dir, dir))
}

func TestSyncStyle(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	t.Run("first fetch writes the cache", func(t *testing.T) {
		c := newSyncCache(t)
		f := &fakeFetcher{content: syncPack, etag: `"v1"`}

		outcome, meta, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{})
		require.NoError(t, err)
		assert.Equal(t, syncUpdated, outcome)
		assert.Equal(t, `"v1"`, meta.ETag)
		assert.Empty(t, f.lastETag)

		content, _, err := c.Read("acme", "style")
		require.NoError(t, err)
		assert.Equal(t, syncPack, content)
	})

	t.Run("fresh cache skips the fetch", func(t *testing.T) {
		c := newSyncCache(t)
		require.NoError(t, c.Write("acme", "style", syncPack, &cache.Metadata{ETag: `"v1"`}))
		f := &fakeFetcher{content: syncPack, etag: `"v1"`}

		outcome, _, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{})
		require.NoError(t, err)
		assert.Equal(t, syncFresh, outcome)
		assert.Zero(t, f.calls)
	})

	t.Run("stale cache revalidates with etag", func(t *testing.T) {
		c := newSyncCache(t)
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, c.Write("acme", "style", syncPack, &cache.Metadata{ETag: `"v1"`, LastFetched: old}))
		f := &fakeFetcher{content: syncPack, etag: `"v1"`}

		outcome, meta, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{})
		require.NoError(t, err)
		assert.Equal(t, syncUnchanged, outcome)
		assert.Equal(t, `"v1"`, f.lastETag)
		assert.True(t, meta.LastFetched.After(old))
	})

	t.Run("force ignores etag", func(t *testing.T) {
		c := newSyncCache(t)
		require.NoError(t, c.Write("acme", "style", syncPack, &cache.Metadata{ETag: `"v1"`}))
		f := &fakeFetcher{content: syncPack + "synonyms:\n  gadget: [device]\n", etag: `"v1"`}

		outcome, _, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{force: true})
		require.NoError(t, err)
		assert.Equal(t, syncUpdated, outcome)
		assert.Empty(t, f.lastETag)

		content, _, err := c.Read("acme", "style")
		require.NoError(t, err)
		assert.Contains(t, content, "gadget")
	})

	t.Run("invalid pack keeps the old cache", func(t *testing.T) {
		c := newSyncCache(t)
		require.NoError(t, c.Write("acme", "style", syncPack, &cache.Metadata{}))
		f := &fakeFetcher{content: "pool: [unclosed", etag: `"v2"`}

		_, _, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{force: true})
		assert.True(t, errors.Is(err, errors.ErrConfigInvalid))

		content, _, err := c.Read("acme", "style")
		require.NoError(t, err)
		assert.Equal(t, syncPack, content)
	})

	t.Run("fetch failure", func(t *testing.T) {
		c := newSyncCache(t)
		f := &fakeFetcher{err: fmt.Errorf("connection refused")}

		_, _, err := syncStyle(ctx, f, c, cfg, "acme", "style", &syncOptions{})
		assert.True(t, errors.Is(err, errors.ErrStyleFetchFailed))
	})
}

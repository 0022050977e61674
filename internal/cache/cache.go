package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
)

// Cache manages style packs synced from GitHub.
type Cache struct {
	paths *config.Paths
	now   func() time.Time
}

// New creates a cache manager.
func New(paths *config.Paths) *Cache {
	return &Cache{paths: paths, now: time.Now}
}

// Read returns cached content and metadata, or CacheNotFound.
// Missing or corrupt metadata is replaced by a minimal record.
func (c *Cache) Read(owner, repo string) (string, *Metadata, error) {
	content, err := os.ReadFile(c.paths.CacheFile(owner, repo))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, errors.CacheNotFound(owner + "/" + repo)
		}
		return "", nil, err
	}

	meta, err := c.GetMetadata(owner, repo)
	if err != nil {
		meta = &Metadata{Owner: owner, Repo: repo, Path: config.StyleFileName, LastFetched: c.now()}
	}

	return string(content), meta, nil
}

// Write stores content and metadata.
func (c *Cache) Write(owner, repo, content string, meta *Metadata) error {
	if err := os.MkdirAll(c.paths.CacheDir, 0755); err != nil {
		return err
	}

	if meta.LastFetched.IsZero() {
		meta.LastFetched = c.now()
	}
	if meta.Path == "" {
		meta.Path = config.StyleFileName
	}
	meta.Owner = owner
	meta.Repo = repo

	if err := os.WriteFile(c.paths.CacheFile(owner, repo), []byte(content), 0644); err != nil {
		return err
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.paths.CacheMetadataFile(owner, repo), metaBytes, 0644)
}

// Touch refreshes LastFetched without rewriting content, used after a
// not-modified response.
func (c *Cache) Touch(owner, repo string) error {
	content, meta, err := c.Read(owner, repo)
	if err != nil {
		return err
	}
	meta.LastFetched = c.now()
	return c.Write(owner, repo, content, meta)
}

// Exists checks if cache exists for a repo.
func (c *Cache) Exists(owner, repo string) bool {
	_, err := os.Stat(c.paths.CacheFile(owner, repo))
	return err == nil
}

// Clear removes cached content for a repo.
// Returns nil even if files don't exist.
func (c *Cache) Clear(owner, repo string) error {
	if err := os.Remove(c.paths.CacheFile(owner, repo)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cached style pack: %w", err)
	}
	if err := os.Remove(c.paths.CacheMetadataFile(owner, repo)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache metadata: %w", err)
	}
	return nil
}

// GetMetadata returns only the metadata without reading content.
func (c *Cache) GetMetadata(owner, repo string) (*Metadata, error) {
	metaBytes, err := os.ReadFile(c.paths.CacheMetadataFile(owner, repo))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.CacheNotFound(owner + "/" + repo)
		}
		return nil, err
	}

	meta := &Metadata{}
	if err := json.Unmarshal(metaBytes, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.paths.CacheDir
}

// ListCached returns all cached owner-repo identifiers.
func (c *Cache) ListCached() ([]string, error) {
	entries, err := os.ReadDir(c.paths.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var repos []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ".yaml" {
			repos = append(repos, strings.TrimSuffix(name, ".yaml"))
		}
	}
	return repos, nil
}

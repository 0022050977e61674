package optimize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/config"
)

// OptimizationMeta describes a cached result.
type OptimizationMeta struct {
	Key         string            `json:"key"`
	OptimizedAt time.Time         `json:"optimized_at"`
	Keyword     string            `json:"keyword"`
	Origin      analysis.Origin   `json:"origin"`
	Satisfied   bool              `json:"satisfied"`
	Snapshot    analysis.Snapshot `json:"snapshot"`
	Model       string            `json:"model,omitempty"`
	Seed        uint64            `json:"seed"`
}

// OptimizationCache stores results on disk keyed by request hash.
type OptimizationCache struct {
	paths *config.Paths
}

// NewOptimizationCache creates a new cache.
func NewOptimizationCache(paths *config.Paths) *OptimizationCache {
	return &OptimizationCache{paths: paths}
}

// HashContent generates a SHA256 hash for content.
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// RequestKey hashes everything that determines a result: the draft, the
// keyword and morphemes, both ranges, the attempt budget and the model.
func RequestKey(req Request, model string) string {
	deterministic := req.Deterministic || req.MaxAttempts == 0
	if deterministic {
		model = ""
	}
	parts := []string{
		req.Draft,
		req.Keyword,
		strings.Join(req.Morphemes, "\x1f"),
		req.CharRange.String(),
		req.TermRange.String(),
		fmt.Sprintf("attempts=%d deterministic=%t", req.MaxAttempts, deterministic),
		model,
	}
	return HashContent(strings.Join(parts, "\x1e"))
}

// Read retrieves a cached result. It returns empty values when nothing is
// cached, and removes content whose metadata is missing or corrupt.
func (c *OptimizationCache) Read(key string) (string, *OptimizationMeta, error) {
	content, err := os.ReadFile(c.paths.OptimizedFile(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, err
	}

	meta, err := c.ReadMeta(key)
	if err != nil {
		_ = c.Clear(key)
		return "", nil, nil
	}

	return string(content), meta, nil
}

// ReadMeta retrieves only the metadata for a result.
func (c *OptimizationCache) ReadMeta(key string) (*OptimizationMeta, error) {
	data, err := os.ReadFile(c.paths.OptimizedMetaFile(key))
	if err != nil {
		return nil, err
	}

	var meta OptimizationMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Write stores a result with metadata.
func (c *OptimizationCache) Write(key, content string, meta *OptimizationMeta) error {
	if err := os.MkdirAll(c.paths.OptimizedDir(), 0755); err != nil {
		return err
	}

	meta.Key = key
	if err := os.WriteFile(c.paths.OptimizedFile(key), []byte(content), 0644); err != nil {
		return err
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.paths.OptimizedMetaFile(key), metaData, 0644)
}

// Clear removes a cached result.
func (c *OptimizationCache) Clear(key string) error {
	for _, p := range []string{c.paths.OptimizedFile(key), c.paths.OptimizedMetaFile(key)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ListCached returns the keys of all cached results.
func (c *OptimizationCache) ListCached() ([]string, error) {
	entries, err := os.ReadDir(c.paths.OptimizedDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".md" {
			result = append(result, strings.TrimSuffix(entry.Name(), ".md"))
		}
	}
	return result, nil
}

// Prune removes results older than maxAge and returns how many were removed.
func (c *OptimizationCache) Prune(maxAge time.Duration, now time.Time) (int, error) {
	keys, err := c.ListCached()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		meta, err := c.ReadMeta(key)
		if err == nil && now.Sub(meta.OptimizedAt) < maxAge {
			continue
		}
		if err := c.Clear(key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// StyleFileName is the style pack file looked up in a style repository.
const StyleFileName = "keyfit-style.yaml"

// Paths provides all keyfit-related filesystem paths.
type Paths struct {
	ConfigDir  string // ~/.config/keyfit
	CacheDir   string // ~/.cache/keyfit
	ConfigFile string // ~/.config/keyfit/config.yaml
	StyleFile  string // ~/.config/keyfit/style.yaml
	RunsDir    string // ~/.cache/keyfit/runs
}

// NewPaths creates Paths using ~/.config and ~/.cache directories.
// These are used on every platform rather than platform-specific
// locations like ~/Library/Application Support.
func NewPaths() *Paths {
	home := os.Getenv("HOME")
	return NewPathsWithOverrides(
		filepath.Join(home, ".config", "keyfit"),
		filepath.Join(home, ".cache", "keyfit"),
	)
}

// NewPathsWithOverrides allows overriding directories for testing.
func NewPathsWithOverrides(configDir, cacheDir string) *Paths {
	return &Paths{
		ConfigDir:  configDir,
		CacheDir:   cacheDir,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
		StyleFile:  filepath.Join(configDir, "style.yaml"),
		RunsDir:    filepath.Join(cacheDir, "runs"),
	}
}

// CacheFile returns the path for a cached style pack.
func (p *Paths) CacheFile(owner, repo string) string {
	return filepath.Join(p.CacheDir, fmt.Sprintf("%s-%s.yaml", owner, repo))
}

// CacheMetadataFile returns the path for cache metadata sidecar.
func (p *Paths) CacheMetadataFile(owner, repo string) string {
	return filepath.Join(p.CacheDir, fmt.Sprintf("%s-%s.meta.json", owner, repo))
}

// OptimizedDir returns the directory holding cached optimization results.
func (p *Paths) OptimizedDir() string {
	return filepath.Join(p.CacheDir, "optimized")
}

// OptimizedFile returns the cached result path for a request key.
func (p *Paths) OptimizedFile(key string) string {
	return filepath.Join(p.OptimizedDir(), key+".md")
}

// OptimizedMetaFile returns the metadata sidecar path for a request key.
func (p *Paths) OptimizedMetaFile(key string) string {
	return filepath.Join(p.OptimizedDir(), key+".meta.json")
}

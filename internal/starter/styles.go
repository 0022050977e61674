// Package starter provides embedded starter style packs that ship with keyfit.
package starter

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed styles/*.yaml
var stylesFS embed.FS

// StyleNames returns the list of available starter style pack names.
func StyleNames() []string {
	entries, err := stylesFS.ReadDir("styles")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}
	return names
}

// GetStyle returns the content of a starter style pack by name.
func GetStyle(name string) ([]byte, error) {
	data, err := stylesFS.ReadFile("styles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown starter style %q (available: %s)", name, strings.Join(StyleNames(), ", "))
	}
	return data, nil
}

// BootstrapStyle writes the named starter pack to targetPath. An existing
// file is left alone; the returned bool reports whether one was written.
func BootstrapStyle(name, targetPath string) (bool, error) {
	content, err := GetStyle(name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(targetPath); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create style directory: %w", err)
	}
	if err := os.WriteFile(targetPath, content, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", targetPath, err)
	}
	return true, nil
}

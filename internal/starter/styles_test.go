package starter

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/HartBrook/keyfit/internal/style"
)

func TestStyleNames(t *testing.T) {
	names := StyleNames()

	for _, exp := range []string{"korean-blog", "english-blog"} {
		if !slices.Contains(names, exp) {
			t.Errorf("expected style %q in %v", exp, names)
		}
	}
}

func TestStarterStylesParse(t *testing.T) {
	for _, name := range StyleNames() {
		t.Run(name, func(t *testing.T) {
			content, err := GetStyle(name)
			if err != nil {
				t.Fatalf("GetStyle(%q) error = %v", name, err)
			}
			pack, err := style.Parse(content)
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			if pack.Name != name {
				t.Errorf("pack name = %q, want %q", pack.Name, name)
			}
		})
	}
}

func TestGetStyle_NotFound(t *testing.T) {
	if _, err := GetStyle("nonexistent"); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestBootstrapStyle(t *testing.T) {
	target := filepath.Join(t.TempDir(), "keyfit", "style.yaml")

	written, err := BootstrapStyle("korean-blog", target)
	if err != nil {
		t.Fatalf("BootstrapStyle error = %v", err)
	}
	if !written {
		t.Error("expected the style to be written")
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("style file missing: %v", err)
	}

	// Existing files are kept.
	if err := os.WriteFile(target, []byte("name: mine\n"), 0644); err != nil {
		t.Fatal(err)
	}
	written, err = BootstrapStyle("korean-blog", target)
	if err != nil {
		t.Fatalf("BootstrapStyle error = %v", err)
	}
	if written {
		t.Error("expected existing style to be kept")
	}
	content, _ := os.ReadFile(target)
	if string(content) != "name: mine\n" {
		t.Errorf("existing style was overwritten: %q", content)
	}
}

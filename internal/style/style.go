// Package style loads style packs: substitution pools, sentence templates and
// prompt synonyms that tune the optimizer for a blog's voice.
package style

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/forced"
)

// Pack is the content of a keyfit-style.yaml file.
type Pack struct {
	Name      string              `yaml:"name,omitempty"`
	Pool      forced.StaticPool   `yaml:"pool,omitempty"`
	Templates forced.Templates    `yaml:"templates,omitempty"`
	Synonyms  map[string][]string `yaml:"synonyms,omitempty"` // hints for rewrite prompts
}

// Parse decodes a style pack.
func Parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to parse style pack", "Check keyfit-style.yaml syntax", err)
	}
	return &p, nil
}

// PoolOver returns the pack's pool layered over the default pool.
func (p *Pack) PoolOver(base forced.StaticPool) forced.StaticPool {
	if p == nil {
		return base
	}
	return base.Merge(p.Pool)
}

// Load resolves the style pack named by cfg: a local file when style.path is
// set, otherwise the cached copy of style.source. It returns nil when no
// style is configured.
func Load(cfg *config.Config, c *cache.Cache) (*Pack, error) {
	if cfg.Style.Path != "" {
		data, err := os.ReadFile(cfg.Style.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to read style pack", "Check style.path in config", err)
		}
		return Parse(data)
	}

	if cfg.Style.Source == "" {
		return nil, nil
	}

	owner, repo, err := cfg.StyleOwnerRepo()
	if err != nil {
		return nil, errors.InvalidRepo(cfg.Style.Source)
	}
	content, _, err := c.Read(owner, repo)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(content))
}

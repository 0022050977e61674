package integration

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/config"
)

// Fixture represents a test scenario loaded from YAML.
type Fixture struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Setup       FixtureSetup      `yaml:"setup"`
	Assertions  FixtureAssertions `yaml:"assertions"`
}

// FixtureSetup defines the draft, the targets and any canned model output.
type FixtureSetup struct {
	Keyword   string       `yaml:"keyword"`
	Morphemes []string     `yaml:"morphemes"`
	Draft     string       `yaml:"draft"`
	Seed      uint64       `yaml:"seed"`
	Responses []string     `yaml:"responses"` // model replies in order; empty means no model
	Style     *StyleSetup  `yaml:"style"`
	Config    *ConfigSetup `yaml:"config"`
}

// StyleSetup caches a style pack under a source repository.
type StyleSetup struct {
	Source string `yaml:"source"`
	Pack   string `yaml:"pack"`
}

// ConfigSetup is the subset of config.yaml a fixture can set.
type ConfigSetup struct {
	Chars       analysis.Range `yaml:"chars"`
	Terms       analysis.Range `yaml:"terms"`
	MaxAttempts int            `yaml:"max_attempts"`
	Marker      string         `yaml:"marker"`
}

// FixtureAssertions defines what to verify.
type FixtureAssertions struct {
	Satisfied   *bool          `yaml:"satisfied"`
	Origin      string         `yaml:"origin"`
	Contains    []string       `yaml:"contains"`
	NotContains []string       `yaml:"not_contains"`
	Prefix      string         `yaml:"prefix"`
	References  string         `yaml:"references"` // block the text must end with
	MinCounts   map[string]int `yaml:"min_counts"`
	MaxCounts   map[string]int `yaml:"max_counts"`
	Stages      []string       `yaml:"stages"` // progress stages that must be reported
}

// LoadFixture loads a fixture from a YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}

	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}

	return &fixture, nil
}

// Validate checks that the fixture has all required fields.
func (f *Fixture) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if f.Setup.Keyword == "" {
		return fmt.Errorf("missing required field: setup.keyword")
	}
	if f.Setup.Draft == "" {
		return fmt.Errorf("missing required field: setup.draft")
	}
	if f.Setup.Config == nil {
		return fmt.Errorf("missing required field: setup.config")
	}
	if f.Setup.Style != nil && f.Setup.Style.Source == "" {
		return fmt.Errorf("missing required field: setup.style.source")
	}
	return nil
}

// LoadAllFixtures loads all fixtures from a directory.
func LoadAllFixtures(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var fixtures []*Fixture
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}

		fixture, err := LoadFixture(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}

	return fixtures, nil
}

// ToConfig converts fixture config setup to a validated config.Config.
func (c *ConfigSetup) ToConfig() (*config.Config, error) {
	cfg := config.Default()
	if c.Chars != (analysis.Range{}) {
		cfg.Constraints.Chars = c.Chars
	}
	if c.Terms != (analysis.Range{}) {
		cfg.Constraints.Terms = c.Terms
	}
	if c.MaxAttempts > 0 {
		cfg.Constraints.MaxAttempts = c.MaxAttempts
	}
	if c.Marker != "" {
		cfg.References.Marker = c.Marker
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

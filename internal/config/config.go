// Package config handles keyfit configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/errors"
)

var validate = validator.New()

// ProviderConfig selects and tunes the text-generation service.
type ProviderConfig struct {
	Name              string `yaml:"name" validate:"oneof=anthropic openai"`
	Model             string `yaml:"model,omitempty"`
	BaseURL           string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" validate:"gte=0"`
	MaxRetries        int    `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay        string `yaml:"retry_delay"`
	Substitutions     bool   `yaml:"substitutions"` // ask the model for synonyms of overused terms
}

// ConstraintsConfig holds the target bands and stage limits.
type ConstraintsConfig struct {
	Chars            analysis.Range `yaml:"chars"`
	Terms            analysis.Range `yaml:"terms"`
	MaxAttempts      int            `yaml:"max_attempts" validate:"gte=1,lte=10"`
	Tolerance        int            `yaml:"tolerance" validate:"gte=0"`
	ForcedIterations int            `yaml:"forced_iterations" validate:"gte=1,lte=10"`
	Budget           string         `yaml:"budget"` // wall-clock limit per run
}

// ReferencesConfig locates the trailing citation block.
type ReferencesConfig struct {
	Marker string `yaml:"marker"`
}

// TermsConfig tunes tracked-term derivation.
type TermsConfig struct {
	Morphemes []string            `yaml:"morphemes,omitempty"`
	Tokens    map[string][]string `yaml:"tokens,omitempty"` // phrase -> tokens
}

// StyleConfig points at a style pack.
type StyleConfig struct {
	Source string `yaml:"source,omitempty"` // owner/repo holding keyfit-style.yaml
	Path   string `yaml:"path,omitempty"`   // local style file, wins over source
}

// ProgressConfig selects where run events are written.
type ProgressConfig struct {
	Backend   string `yaml:"backend" validate:"oneof=none redis badger"`
	RedisAddr string `yaml:"redis_addr,omitempty" validate:"required_if=Backend redis"`
	BadgerDir string `yaml:"badger_dir,omitempty"`
	TTL       string `yaml:"ttl"`
}

// CacheConfig contains cache settings.
type CacheConfig struct {
	TTL     string `yaml:"ttl"` // style pack freshness, e.g. "24h"
	Results bool   `yaml:"results"`
}

// Config represents the keyfit configuration file.
type Config struct {
	Version     int               `yaml:"version"`
	Provider    ProviderConfig    `yaml:"provider"`
	Constraints ConstraintsConfig `yaml:"constraints"`
	References  ReferencesConfig  `yaml:"references"`
	Terms       TermsConfig       `yaml:"terms,omitempty"`
	Style       StyleConfig       `yaml:"style,omitempty"`
	Progress    ProgressConfig    `yaml:"progress"`
	Cache       CacheConfig       `yaml:"cache"`
}

// Default values.
const (
	DefaultVersion          = 1
	DefaultProvider         = "anthropic"
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = "2s"
	DefaultMaxAttempts      = 3
	DefaultTolerance        = 50
	DefaultForcedIterations = 3
	DefaultBudget           = "5m"
	DefaultMarker           = analysis.DefaultMarker
	DefaultProgressBackend  = "none"
	DefaultProgressTTL      = "24h"
	DefaultCacheTTL         = "24h"
)

// Default character and term bands.
var (
	DefaultCharRange = analysis.Range{Min: 1700, Max: 2000}
	DefaultTermRange = analysis.Range{Min: 17, Max: 20}
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates config from the default location.
func Load() (*Config, error) {
	paths := NewPaths()
	return LoadFrom(paths.ConfigFile)
}

// LoadOrDefault loads the config file, falling back to defaults when it
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if errors.Is(err, errors.ErrConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFrom reads and validates config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to read config", "", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to parse config YAML", "Check config syntax", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to the default location.
func Save(cfg *Config) error {
	paths := NewPaths()
	return SaveTo(cfg, paths.ConfigFile)
}

// SaveTo writes config to a specific path.
func SaveTo(cfg *Config, path string) error {
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to marshal config", "", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to create config directory", "", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks config for required fields and valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigInvalid(describe(err))
	}

	for name, value := range map[string]string{
		"provider.retry_delay": c.Provider.RetryDelay,
		"constraints.budget":   c.Constraints.Budget,
		"progress.ttl":         c.Progress.TTL,
		"cache.ttl":            c.Cache.TTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("invalid %s format, use Go duration format (e.g., 24h)", name))
		}
	}

	if c.Style.Source != "" {
		if _, _, err := ParseRepo(c.Style.Source); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("invalid style.source: %v", err))
		}
	}

	return nil
}

// describe flattens validator errors into one readable line.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// applyDefaults sets default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = DefaultVersion
	}
	if c.Provider.Name == "" {
		c.Provider.Name = DefaultProvider
	}
	if c.Provider.MaxRetries == 0 {
		c.Provider.MaxRetries = DefaultMaxRetries
	}
	if c.Provider.RetryDelay == "" {
		c.Provider.RetryDelay = DefaultRetryDelay
	}
	if c.Constraints.Chars == (analysis.Range{}) {
		c.Constraints.Chars = DefaultCharRange
	}
	if c.Constraints.Terms == (analysis.Range{}) {
		c.Constraints.Terms = DefaultTermRange
	}
	if c.Constraints.MaxAttempts == 0 {
		c.Constraints.MaxAttempts = DefaultMaxAttempts
	}
	if c.Constraints.Tolerance == 0 {
		c.Constraints.Tolerance = DefaultTolerance
	}
	if c.Constraints.ForcedIterations == 0 {
		c.Constraints.ForcedIterations = DefaultForcedIterations
	}
	if c.Constraints.Budget == "" {
		c.Constraints.Budget = DefaultBudget
	}
	if c.References.Marker == "" {
		c.References.Marker = DefaultMarker
	}
	if c.Progress.Backend == "" {
		c.Progress.Backend = DefaultProgressBackend
	}
	if c.Progress.TTL == "" {
		c.Progress.TTL = DefaultProgressTTL
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
}

// TTLDuration returns the cache TTL as a time.Duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	return durationOr(c.TTL, DefaultCacheTTL)
}

// RetryDelayDuration returns the retry delay as a time.Duration.
func (p *ProviderConfig) RetryDelayDuration() time.Duration {
	return durationOr(p.RetryDelay, DefaultRetryDelay)
}

// BudgetDuration returns the per-run wall-clock budget.
func (c *ConstraintsConfig) BudgetDuration() time.Duration {
	return durationOr(c.Budget, DefaultBudget)
}

// TTLDuration returns how long run events are retained.
func (p *ProgressConfig) TTLDuration() time.Duration {
	return durationOr(p.TTL, DefaultProgressTTL)
}

func durationOr(value, fallback string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// Exists checks if a config file exists at the default location.
func Exists() bool {
	paths := NewPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// StyleOwnerRepo returns the owner and repo of the configured style source.
func (c *Config) StyleOwnerRepo() (owner, repo string, err error) {
	return ParseRepo(c.Style.Source)
}

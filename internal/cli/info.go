package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/optimize"
)

type infoOptions struct {
	raw bool
}

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	opts := &infoOptions{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show current config state",
		Long: `Displays the effective keyfit configuration: provider, target bands,
style pack freshness and run tracking.`,
		Example: `  keyfit info
  keyfit info --raw    # Print the effective config as YAML`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()
			if opts.raw {
				return printRawConfig(os.Stdout, env)
			}
			showInfo(os.Stdout, env)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the effective config as YAML")

	return cmd
}

func printRawConfig(w io.Writer, env *environment) error {
	data, err := yaml.Marshal(env.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func showInfo(w io.Writer, env *environment) {
	cfg := env.cfg

	configStatus := env.paths.ConfigFile
	if globals.configPath != "" {
		configStatus = globals.configPath
	}
	if _, err := os.Stat(configStatus); err != nil {
		configStatus = dim("defaults (no config file)")
	}

	model := cfg.Provider.Model
	if model == "" {
		model = "default model"
	}

	styleStatus := dim("none")
	switch {
	case cfg.Style.Path != "":
		styleStatus = cfg.Style.Path
	case cfg.Style.Source != "":
		styleStatus = fmt.Sprintf("%s (%s)", cfg.Style.Source, warning("not synced"))
		if owner, repo, err := cfg.StyleOwnerRepo(); err == nil {
			if meta, err := cache.New(env.paths).GetMetadata(owner, repo); err == nil {
				age := success(meta.Age())
				if meta.IsStale(cfg.Cache.TTLDuration()) {
					age = fmt.Sprintf("%s %s", meta.Age(), warning("(stale)"))
				}
				styleStatus = fmt.Sprintf("%s (%s)", cfg.Style.Source, age)
			}
		}
	}

	cached := 0
	if keys, err := optimize.NewOptimizationCache(env.paths).ListCached(); err == nil {
		cached = len(keys)
	}
	results := dim("off")
	if cfg.Cache.Results {
		results = fmt.Sprintf("on, %d cached", cached)
	}

	fmt.Fprintf(w, "  %s: %s\n", dim("Config"), configStatus)
	fmt.Fprintf(w, "  %s: %s (%s)\n", dim("Provider"), cfg.Provider.Name, model)
	fmt.Fprintf(w, "  %s: %s, %s per term\n", dim("Targets"), cfg.Constraints.Chars, cfg.Constraints.Terms)
	fmt.Fprintf(w, "  %s: %s\n", dim("Style"), styleStatus)
	fmt.Fprintf(w, "  %s: %s\n", dim("Runs"), cfg.Progress.Backend)
	fmt.Fprintf(w, "  %s: %s\n", dim("Results"), results)
}

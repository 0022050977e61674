package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/config"
	"github.com/HartBrook/keyfit/internal/starter"
)

type initOptions struct {
	provider string
	model    string
	style    string
	progress string
	starter  string
	yes      bool
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize keyfit configuration",
		Long: `Interactive setup for keyfit.

This command will:
1. Ask which model provider to use
2. Optionally point at a style pack repository
3. Create the configuration file
4. Fetch the style pack, if one was given

Flags skip the matching prompts; --yes accepts defaults for the rest.`,
		Example: `  keyfit init
  keyfit init --provider openai --style acme/keyfit-style-ko --yes
  keyfit init --starter korean-blog --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(contextOrBackground(cmd.Context()), opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "Model provider: anthropic or openai")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (default: provider default)")
	cmd.Flags().StringVar(&opts.style, "style", "", "Style pack repository (owner/repo)")
	cmd.Flags().StringVar(&opts.progress, "progress", "", "Run tracking backend: none, redis, or badger")
	cmd.Flags().StringVar(&opts.starter, "starter", "", fmt.Sprintf("Install a bundled style pack (%s)", strings.Join(starter.StyleNames(), ", ")))
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Accept defaults without prompting")

	return cmd
}

func runInit(ctx context.Context, opts *initOptions) error {
	paths := config.NewPaths()
	path := globals.configPath
	if path == "" {
		path = paths.ConfigFile
	}

	if _, err := os.Stat(path); err == nil && !opts.yes {
		fmt.Println("Keyfit is already configured.")
		fmt.Printf("Config file: %s\n\n", path)
		if !promptYesNo("Do you want to reconfigure?") {
			return nil
		}
		fmt.Println()
	}

	if !opts.yes {
		if opts.provider == "" {
			opts.provider = promptString(fmt.Sprintf("Model provider [anthropic/openai] (default: %s):", config.DefaultProvider))
		}
		if opts.style == "" && opts.starter == "" {
			opts.style = promptString("Style pack repository, e.g. acme/keyfit-style-ko (leave empty for none):")
		}
		if opts.progress == "" {
			opts.progress = promptString("Run tracking [none/badger/redis] (default: none):")
		}
	}

	cfg, err := buildInitConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Progress.Backend == "redis" && cfg.Progress.RedisAddr == "" {
		cfg.Progress.RedisAddr = "localhost:6379"
	}
	if opts.starter != "" {
		written, err := starter.BootstrapStyle(opts.starter, paths.StyleFile)
		if err != nil {
			return err
		}
		if written {
			printSuccess("Installed starter style %s to %s", opts.starter, paths.StyleFile)
		} else {
			printInfo("Style", paths.StyleFile+" (kept existing file)")
		}
		cfg.Style.Path = paths.StyleFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.SaveTo(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	printSuccess("Config saved to %s", path)

	if cfg.Style.Source != "" {
		fmt.Println()
		fmt.Println("Fetching style pack...")
		if err := runSync(ctx, &syncOptions{force: true}); err != nil {
			printWarning("Initial sync failed: %v", err)
			fmt.Println("You can run `keyfit sync` later to fetch the style pack.")
		}
	}

	fmt.Println()
	fmt.Println("Setup complete!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  %s - check a draft\n", info("keyfit analyze post.md -k \"keyword\""))
	fmt.Printf("  %s - fit a draft\n", info("keyfit optimize post.md -k \"keyword\""))
	return nil
}

// buildInitConfig turns init answers into a config with defaults applied.
func buildInitConfig(opts *initOptions) (*config.Config, error) {
	cfg := config.Default()
	if p := strings.ToLower(strings.TrimSpace(opts.provider)); p != "" {
		cfg.Provider.Name = p
	}
	cfg.Provider.Model = strings.TrimSpace(opts.model)

	if s := strings.TrimSpace(opts.style); s != "" {
		owner, repo, err := config.ParseRepo(s)
		if err != nil {
			return nil, err
		}
		cfg.Style.Source = owner + "/" + repo
	}
	if opts.starter != "" && cfg.Style.Source != "" {
		return nil, fmt.Errorf("--starter and --style cannot be combined")
	}
	if b := strings.ToLower(strings.TrimSpace(opts.progress)); b != "" {
		cfg.Progress.Backend = b
	}
	return cfg, nil
}

// promptString prompts for a string input.
func promptString(prompt string) string {
	fmt.Printf("%s ", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptYesNo prompts for a yes/no input.
func promptYesNo(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

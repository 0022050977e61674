package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/cache"
	"github.com/HartBrook/keyfit/internal/optimize"
)

// NewCacheCmd creates the cache command.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune cached results and style packs",
	}
	cmd.AddCommand(newCacheListCmd(), newCachePruneCmd(), newCacheClearCmd())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached style packs and optimization results",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			styles, err := cache.New(env.paths).ListCached()
			if err != nil {
				return err
			}
			fmt.Printf("Style packs: %d\n", len(styles))
			for _, name := range styles {
				fmt.Printf("  %s\n", name)
			}

			oc := optimize.NewOptimizationCache(env.paths)
			keys, err := oc.ListCached()
			if err != nil {
				return err
			}
			fmt.Printf("\nOptimization results: %d\n", len(keys))
			for _, key := range keys {
				meta, err := oc.ReadMeta(key)
				if err != nil {
					fmt.Printf("  %s %s\n", shortKey(key), dim("(no metadata)"))
					continue
				}
				mark := successIcon
				if !meta.Satisfied {
					mark = warningIcon
				}
				fmt.Printf("  %s %s %s %s\n", mark, shortKey(key), meta.Keyword, dim(meta.OptimizedAt.Local().Format(time.DateTime)))
			}
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove optimization results older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			n, err := optimize.NewOptimizationCache(env.paths).Prune(olderThan, time.Now())
			if err != nil {
				return err
			}
			printSuccess("Removed %d cached results", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which results are removed")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached optimization result",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			oc := optimize.NewOptimizationCache(env.paths)
			keys, err := oc.ListCached()
			if err != nil {
				return err
			}
			for _, key := range keys {
				if err := oc.Clear(key); err != nil {
					return err
				}
			}
			printSuccess("Removed %d cached results", len(keys))
			return nil
		},
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

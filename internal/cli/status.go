package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HartBrook/keyfit/internal/errors"
	"github.com/HartBrook/keyfit/internal/progress"
)

type statusOptions struct {
	limit int
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show optimization runs and their progress",
		Long: `Lists recent runs, or the events of one run.

Runs are only visible across processes when progress.backend is redis or
badger.`,
		Example: `  keyfit status
  keyfit status 3f2a9c1e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(contextOrBackground(cmd.Context()), args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum runs to list")

	return cmd
}

func runStatus(ctx context.Context, args []string, opts *statusOptions) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	if !progress.Persistent(env.cfg.Progress) {
		return errors.New(errors.ErrConfigInvalid, "run tracking is disabled",
			"Set progress.backend to redis or badger in config")
	}

	store, err := progress.Open(ctx, env.cfg.Progress, env.paths, env.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(ctx, os.Stdout, store, args[0])
	}
	return listRuns(ctx, os.Stdout, store, opts.limit)
}

func listRuns(ctx context.Context, w io.Writer, store progress.Store, limit int) error {
	states, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}
	for _, st := range states {
		fmt.Fprintf(w, "  %s %s %s %s\n", statusIcon(st.Status), st.ID, dim(st.StartedAt.Local().Format(time.DateTime)), st.Label)
	}
	return nil
}

func showRun(ctx context.Context, w io.Writer, store progress.Store, id string) error {
	st, err := store.State(ctx, id)
	if err != nil {
		return err
	}
	events, err := store.Events(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s %s\n", statusIcon(st.Status), st.ID, st.Status)
	if st.Label != "" {
		fmt.Fprintf(w, "  %s: %s\n", dim("Draft"), st.Label)
	}
	fmt.Fprintf(w, "  %s: %s\n", dim("Started"), st.StartedAt.Local().Format(time.DateTime))
	if st.Status.Finished() {
		fmt.Fprintf(w, "  %s: %s\n", dim("Took"), st.UpdatedAt.Sub(st.StartedAt).Round(time.Millisecond))
	}
	if st.Error != "" {
		fmt.Fprintf(w, "  %s: %s\n", dim("Error"), danger(st.Error))
	}

	fmt.Fprintln(w)
	for _, ev := range events {
		fmt.Fprintf(w, "  %s %-12s %s\n", dim(ev.At.Local().Format(time.TimeOnly)), ev.Stage, ev.Message)
		if ev.Summary != "" {
			fmt.Fprintf(w, "  %s\n", dim("           "+ev.Summary))
		}
	}
	return nil
}

func statusIcon(s progress.Status) string {
	switch s {
	case progress.StatusSucceeded:
		return successIcon
	case progress.StatusRunning:
		return info("…")
	case progress.StatusCancelled:
		return warningIcon
	default:
		return errorIcon
	}
}

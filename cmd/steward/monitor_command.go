package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"steward/internal/logging"
	"steward/internal/store"
	"steward/internal/workflow"
)

// newMonitorCommand runs the watcher and processing loop in the
// foreground, without the daemon or its API. Useful on a bench machine
// where nobody wants a background service.
func newMonitorCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the intake directory in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			run := *cfg
			run.Monitor.Enabled = true

			level := "info"
			if quiet {
				level = "warn"
			}
			logger, err := logging.New(logging.Options{Level: level, Format: "console"})
			if err != nil {
				return err
			}

			st, err := store.Open(&run)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", run.WatchDirOrRoot())
			wf := workflow.New(&run, st, nil, nil, nil, logger)
			if err := wf.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	return cmd
}

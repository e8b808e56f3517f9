package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidy/internal/archive"
	"tidy/internal/logging"
	"tidy/internal/organizer"
	"tidy/internal/pathlock"
	"tidy/internal/queue"
	"tidy/internal/workflow"
)

// newScanCommand runs one reconciliation pass without the daemon: walk the
// watched roots, organize everything found, then sweep stale files into
// archives if archival is enabled.
func newScanCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Organize watched directories once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{
				Level:       level,
				Format:      "console",
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			return ctx.withStore(func(store *queue.Store) error {
				locks := pathlock.NewTable()
				org := organizer.New(cfg, logger, locks)
				sweeper := archive.NewSweeper(cfg, logger, locks)
				manager := workflow.NewManager(cfg, store, org, sweeper, logger)

				if err := manager.Reconcile(cmd.Context()); err != nil {
					return err
				}

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scan complete: %d organized, %d failed\n",
					stats[queue.StatusCompleted], stats[queue.StatusFailed])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each action while scanning")
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tidy/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if daemonLocked(cfg.LockFilePath()) {
				fmt.Fprintln(out, "Daemon: running")
			} else {
				fmt.Fprintln(out, "Daemon: not running")
			}
			fmt.Fprintf(out, "Watching: %s\n", strings.Join(cfg.Watch.TargetDirectories, ", "))

			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, 4)
				for _, status := range []queue.Status{
					queue.StatusPending,
					queue.StatusOrganizing,
					queue.StatusCompleted,
					queue.StatusFailed,
				} {
					rows = append(rows, []string{
						string(status),
						fmt.Sprintf("%d", stats[status]),
					})
				}

				output := renderTable(
					[]string{"Status", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				)
				fmt.Fprintln(out, output)
				return nil
			})
		},
	}
}

// daemonLocked probes the daemon's instance lock. If the lock can be taken
// here, no daemon holds it.
func daemonLocked(path string) bool {
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return false
	}
	if locked {
		_ = lock.Unlock()
		return false
	}
	return true
}

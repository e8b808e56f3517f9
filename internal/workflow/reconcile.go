package workflow

import (
	"context"
	"errors"

	"tidy/internal/logging"
	"tidy/internal/queue"
	"tidy/internal/watch"
)

// Reconcile walks every watched root once, feeds each existing file through
// the same pipeline live notifications use, drains the queue, and finishes
// with one archival sweep. Running it twice with no new files produces no
// additional moves, deletions, or errors: already-organized files are no
// longer directly inside a root, so the walk does not see them.
func (m *Manager) Reconcile(ctx context.Context) error {
	for _, root := range m.cfg.Watch.TargetDirectories {
		files, err := watch.ListRootFiles(root)
		if err != nil {
			m.logger.Warn("cannot scan watched root",
				logging.String(logging.FieldRoot, root),
				logging.Error(err),
				logging.String(logging.FieldImpact, "existing files there stay unorganized until the next scan"),
			)
			continue
		}
		for _, file := range files {
			if _, err := m.store.Enqueue(ctx, file, root, queue.KindScan); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				m.logger.Error("failed to enqueue scanned file",
					logging.String(logging.FieldPath, file),
					logging.Error(err),
				)
			}
		}
		m.logger.Info("scanned watched root",
			logging.String(logging.FieldRoot, root),
			logging.Int("files", len(files)),
		)
	}

	if err := m.ProcessUntilIdle(ctx); err != nil {
		return err
	}

	return m.sweeper.SweepAll(ctx)
}

// ProcessUntilIdle claims and processes pending items until the queue is
// empty. Safe to run alongside the background consumer; claims are atomic.
func (m *Manager) ProcessUntilIdle(ctx context.Context) error {
	for {
		item, err := m.store.NextPending(ctx)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if err := m.processItem(ctx, item); err != nil {
			return err
		}
	}
}

package workflow

import (
	"context"
	"errors"
	"time"

	"tidy/internal/logging"
	"tidy/internal/queue"
)

func (m *Manager) consume(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextPending(ctx)
		if err != nil {
			m.logger.Error("failed to fetch next queue item",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
			if !m.sleep(ctx, m.retryInterval) {
				return
			}
			continue
		}
		if item == nil {
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}

		if err := m.processItem(ctx, item); errors.Is(err, context.Canceled) {
			return
		}
	}
}

// processItem runs one claimed item through the organizer and persists the
// outcome. A per-file error marks the item failed and leaves the file in
// place for a later retry; it never aborts the consumer.
func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	if item.Kind != queue.KindScan {
		if err := m.settle(ctx, item); err != nil {
			return err
		}
	}

	outcome, err := m.organizer.Process(ctx, item.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		item.Status = queue.StatusFailed
		item.ErrorMessage = err.Error()
		m.logger.Warn("file processing failed; will retry on the next pass",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldPath, item.Path),
			logging.Error(err),
		)
	} else {
		item.Status = queue.StatusCompleted
		item.Result = outcome.Result
		item.Category = outcome.Category
		item.FinalPath = outcome.FinalPath
	}

	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("failed to persist item outcome",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_update_failed"),
		)
	}
	return nil
}

// settle waits until a live item is old enough for its write to have
// finished. Scan items skip this; the file already existed at walk time.
func (m *Manager) settle(ctx context.Context, item *queue.Item) error {
	if m.settleDelay <= 0 {
		return nil
	}
	remaining := m.settleDelay - time.Since(item.CreatedAt)
	if remaining <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(remaining):
		return nil
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/queue"
	"tidy/internal/watch"
	"tidy/internal/workflow"
)

// Daemon coordinates the watcher and workflow manager and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	manager  *workflow.Manager
	watcher  *watch.Watcher
	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	cancel    context.CancelFunc
	reconcile sync.WaitGroup
}

// New constructs a daemon with initialized dependencies. The watcher is
// built here so its sink feeds the shared queue store.
func New(cfg *config.Config, store *queue.Store, manager *workflow.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, manager, and logger")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		manager:  manager,
		lockPath: cfg.LockFilePath(),
		lock:     flock.New(cfg.LockFilePath()),
	}
	d.watcher = watch.New(cfg, logger, func(ctx context.Context, event watch.Event) error {
		_, err := store.Enqueue(ctx, event.Path, event.Root, event.Kind)
		return err
	})
	return d, nil
}

// Start acquires the daemon lock, resets work stranded by a previous crash,
// starts the workflow manager and watcher, and kicks off the startup
// reconciliation walk in the background.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tidyd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	reset, err := d.store.ResetStuckOrganizing(runCtx)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("reset stuck items: %w", err)
	}
	if reset > 0 {
		d.logger.Info("requeued items stranded by previous shutdown", logging.Int64("count", reset))
	}

	if err := d.manager.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}

	if err := d.watcher.Start(runCtx); err != nil {
		d.manager.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start watcher: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)

	d.reconcile.Add(1)
	go func() {
		defer d.reconcile.Done()
		if err := d.manager.Reconcile(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("startup reconciliation failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "reconcile_failed"),
			)
		}
	}()

	d.logger.Info("tidy daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watcher.Stop()
	d.reconcile.Wait()
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tidy daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

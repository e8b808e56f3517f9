package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"tidy/internal/archive"
	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/queue"
)

// Event is one validated filesystem notification.
type Event struct {
	Kind queue.EventKind
	Path string
	Root string
}

// Sink receives validated events, typically enqueueing them for processing.
type Sink func(ctx context.Context, event Event) error

// Watcher subscribes to filesystem notifications for every watched root and
// forwards validated events to the sink.
type Watcher struct {
	cfg    *config.Config
	logger *slog.Logger
	filter *Filter
	sink   Sink

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	quit    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New constructs a watcher. The sink must be non-nil.
func New(cfg *config.Config, logger *slog.Logger, sink Sink) *Watcher {
	return &Watcher{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "watcher"),
		filter: NewFilter(cfg),
		sink:   sink,
	}
}

// Start begins watching the configured roots. Roots that do not exist are
// logged and skipped; at least one root must be watchable.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := 0
	for _, root := range w.cfg.Watch.TargetDirectories {
		if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
			w.logger.Warn("watched root unavailable; skipping",
				logging.String(logging.FieldRoot, root),
				logging.String(logging.FieldImpact, "files arriving there will only be organized by a later scan"),
			)
			continue
		}
		if addErr := fsw.Add(root); addErr != nil {
			_ = fsw.Close()
			return addErr
		}
		w.logger.Info("watching root", logging.String(logging.FieldRoot, root))
		watched++
	}
	if watched == 0 {
		_ = fsw.Close()
		return errors.New("no watchable target directories")
	}

	w.fsw = fsw
	w.quit = make(chan struct{})
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx, fsw, w.quit)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	quit := w.quit
	fsw := w.fsw
	w.running = false
	w.quit = nil
	w.fsw = nil
	w.mu.Unlock()

	close(quit)
	w.wg.Wait()
	_ = fsw.Close()
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, quit chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("notification stream error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_stream_error"),
			)
		}
	}
}

// handle maps a raw fsnotify operation onto the event variant the core
// consumes. A rename into a watched root surfaces as Create on every
// platform fsnotify supports, so every arrival funnels through here.
func (w *Watcher) handle(ctx context.Context, raw fsnotify.Event) {
	if !raw.Has(fsnotify.Create) {
		return
	}
	w.Dispatch(ctx, Event{Kind: queue.KindCreated, Path: raw.Name})
}

// Dispatch validates an event and forwards it to the sink. Invalid events
// are dropped silently; sink failures are logged and do not stop watching.
func (w *Watcher) Dispatch(ctx context.Context, event Event) {
	root, ok := w.filter.Validate(event.Path)
	if !ok {
		return
	}
	event.Root = root
	if err := w.sink(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("failed to enqueue event",
			logging.String(logging.FieldPath, event.Path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "enqueue_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
}

// ListRootFiles enumerates regular files directly inside root that pass the
// transient-name filter, excluding the root's own archive bundle. Shared by
// the startup reconciliation walk.
func ListRootFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if IsTransientName(entry.Name()) || entry.Name() == archive.BundleName {
			continue
		}
		files = append(files, filepath.Join(root, entry.Name()))
	}
	return files, nil
}

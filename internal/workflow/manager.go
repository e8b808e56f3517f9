package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tidy/internal/archive"
	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/organizer"
	"tidy/internal/queue"
)

// Manager coordinates queue consumption, reconciliation, and sweep scheduling.
type Manager struct {
	cfg       *config.Config
	store     *queue.Store
	organizer *organizer.Organizer
	sweeper   *archive.Sweeper
	logger    *slog.Logger

	pollInterval  time.Duration
	retryInterval time.Duration
	settleDelay   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, org *organizer.Organizer, sweeper *archive.Sweeper, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:           cfg,
		store:         store,
		organizer:     org,
		sweeper:       sweeper,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		settleDelay:   time.Duration(cfg.Watch.SettleSeconds) * time.Second,
	}
}

// Start begins background processing: the queue consumer and, when archival
// is enabled, the periodic sweep.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.consume(runCtx)

	if m.sweeper.Enabled() {
		m.wg.Add(1)
		go m.sweepLoop(runCtx)
	}
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(m.cfg.Archive.IntervalHours) * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.sweeper.SweepAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error("periodic sweep failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "sweep_failed"),
				)
			}
		}
	}
}

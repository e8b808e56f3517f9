package archive

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/pathlock"
)

// Sweeper walks watched roots and migrates stale files into each directory's
// own bundle. Disabled policy short-circuits every entry point.
type Sweeper struct {
	cfg    *config.Config
	logger *slog.Logger
	locks  *pathlock.Table
}

// NewSweeper constructs a sweeper sharing the organizer's per-directory lock
// table so a sweep excludes concurrent moves into the same directory.
func NewSweeper(cfg *config.Config, logger *slog.Logger, locks *pathlock.Table) *Sweeper {
	return &Sweeper{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "sweeper"),
		locks:  locks,
	}
}

// Enabled reports whether the archive policy is active.
func (s *Sweeper) Enabled() bool {
	return s.cfg.Archive.Enabled
}

// SweepAll runs one sweep over every configured watched root. Per-directory
// failures are logged and do not stop the sweep; only context cancellation
// aborts early.
func (s *Sweeper) SweepAll(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	for _, root := range s.cfg.Watch.TargetDirectories {
		if err := s.SweepRoot(ctx, root); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.logger.Warn("sweep failed for root",
				logging.String(logging.FieldRoot, root),
				logging.Error(err),
				logging.String(logging.FieldEventType, "sweep_root_failed"),
			)
		}
	}
	return nil
}

// SweepRoot archives stale files in root and every subdirectory, each into
// that directory's own bundle.
func (s *Sweeper) SweepRoot(ctx context.Context, root string) error {
	if !s.Enabled() {
		return nil
	}

	cutoff := time.Now().Add(-time.Duration(s.cfg.Archive.Days) * 24 * time.Hour)

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable path during sweep",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, dir := range dirs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err := s.sweepDir(dir, cutoff); err != nil {
			s.logger.Warn("directory sweep failed; files remain candidates for the next pass",
				logging.String(logging.FieldPath, dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "sweep_dir_failed"),
			)
		}
	}
	return nil
}

// sweepDir archives files directly contained in dir whose modification time
// is older than cutoff. The directory lock is held across candidate listing,
// bundle rewrite, and source deletion.
func (s *Sweeper) sweepDir(dir string, cutoff time.Time) error {
	unlock := s.locks.Lock(dir)
	defer unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if isAbandonedTempBundle(name) {
			// A crash between writing and renaming a temp bundle leaves
			// it behind; its entries still live in the sources or in the
			// old bundle, so it is safe to discard.
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("could not remove abandoned temp bundle",
					logging.String(logging.FieldPath, filepath.Join(dir, name)),
					logging.Error(err),
				)
			}
			continue
		}
		if name == BundleName || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	archived, err := appendEntries(dir, candidates)
	if err != nil {
		return err
	}

	for _, source := range archived {
		if err := os.Remove(source); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("archived source could not be removed; it will be re-archived under a suffixed name next pass",
				logging.String(logging.FieldPath, source),
				logging.Error(err),
			)
			continue
		}
		s.logger.Info("file archived",
			logging.String(logging.FieldPath, source),
			logging.String("bundle", filepath.Join(dir, BundleName)),
		)
	}
	return nil
}

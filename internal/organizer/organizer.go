package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"tidy/internal/config"
	"tidy/internal/fileutil"
	"tidy/internal/logging"
	"tidy/internal/pathlock"
	"tidy/internal/queue"
)

// Outcome is the resolution of processing one file.
type Outcome struct {
	Result   queue.Result
	Category string
	// FinalPath is the destination after a move, or the retained copy's
	// path when the candidate was removed as a duplicate.
	FinalPath string
}

// Organizer executes the classify, deduplicate, move pipeline for one file
// at a time.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
	locks  *pathlock.Table
}

// New constructs an organizer sharing the given per-directory lock table with
// the archival sweeper.
func New(cfg *config.Config, logger *slog.Logger, locks *pathlock.Table) *Organizer {
	return &Organizer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
		locks:  locks,
	}
}

// Process takes a file that sits directly inside a watched root and resolves
// it: vanished files are a silent no-op, duplicates are deleted, unique files
// move into their category folder. The error return is a recoverable per-file
// failure; the file stays where it is for the next reconciliation pass.
func (o *Organizer) Process(ctx context.Context, path string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return o.vanished(path), nil
		}
		return Outcome{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return o.vanished(path), nil
	}

	name := filepath.Base(path)
	category := Classify(o.cfg, name)
	destDir := filepath.Join(filepath.Dir(path), category)

	unlock := o.locks.Lock(destDir)
	defer unlock()

	existing, isDup, err := findDuplicate(path, info.Size(), destDir)
	if err != nil {
		if errors.Is(err, ErrVanished) {
			return o.vanished(path), nil
		}
		return Outcome{}, err
	}

	if isDup {
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return o.vanished(path), nil
			}
			return Outcome{}, fmt.Errorf("remove duplicate %s: %w", path, err)
		}
		o.logger.Info("duplicate removed",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldCategory, category),
			logging.String("kept", existing),
		)
		return Outcome{Result: queue.ResultDuplicate, Category: category, FinalPath: existing}, nil
	}

	if err := fileutil.EnsureDir(destDir); err != nil {
		return Outcome{}, err
	}

	finalName := fileutil.UniqueName(destDir, name)
	finalPath := filepath.Join(destDir, finalName)
	if err := fileutil.MoveFile(path, finalPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return o.vanished(path), nil
		}
		return Outcome{}, err
	}

	o.logger.Info("file organized",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldCategory, category),
		logging.String("destination", finalPath),
	)
	return Outcome{Result: queue.ResultMoved, Category: category, FinalPath: finalPath}, nil
}

func (o *Organizer) vanished(path string) Outcome {
	o.logger.Debug("file vanished before processing", logging.String(logging.FieldPath, path))
	return Outcome{Result: queue.ResultVanished}
}

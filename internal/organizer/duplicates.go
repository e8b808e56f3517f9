package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tidy/internal/fileutil"
)

// ErrVanished marks a file that disappeared between notification and
// processing. A lost race with another process, not a failure.
var ErrVanished = errors.New("file vanished during processing")

// findDuplicate reports whether destDir already holds a file with the same
// content as candidate. Size is compared first; only size matches pay for a
// streamed SHA-256 of both sides. The candidate's digest is computed at most
// once. Returns the existing path on a match.
func findDuplicate(candidate string, size int64, destDir string) (string, bool, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("list %s: %w", destDir, err)
	}

	candidateHash := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() != size {
			continue
		}

		if candidateHash == "" {
			candidateHash, err = fileutil.HashFile(candidate)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return "", false, ErrVanished
				}
				return "", false, err
			}
		}

		existing := filepath.Join(destDir, entry.Name())
		existingHash, err := fileutil.HashFile(existing)
		if err != nil {
			// An unreadable neighbor cannot be confirmed as a duplicate;
			// the candidate proceeds as unique.
			continue
		}
		if existingHash == candidateHash {
			return existing, true, nil
		}
	}
	return "", false, nil
}

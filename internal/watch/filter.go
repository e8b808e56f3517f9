package watch

import (
	"os"
	"path/filepath"
	"strings"

	"tidy/internal/archive"
	"tidy/internal/config"
)

// transientSuffixes are in-progress download names that settle under a final
// name later; organizing them mid-write would race the downloader.
var transientSuffixes = []string{".part", ".crdownload", ".download", ".tmp"}

// IsTransientName reports whether a base name should never be organized:
// dotfiles and partial-download spellings.
func IsTransientName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range transientSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Filter validates raw notification paths against the configured roots.
type Filter struct {
	roots map[string]string
}

// NewFilter builds a filter from the configured watched roots. Only files
// directly inside a root are eligible; contents of category folders are
// never re-classified.
func NewFilter(cfg *config.Config) *Filter {
	roots := make(map[string]string, len(cfg.Watch.TargetDirectories))
	for _, root := range cfg.Watch.TargetDirectories {
		cleaned := filepath.Clean(root)
		roots[cleaned] = cleaned
	}
	return &Filter{roots: roots}
}

// Validate resolves a notification path to the watched root it belongs to.
// ok is false when the event is noise: wrong location, transient name, an
// archive bundle, a directory, or a path that no longer exists (a race with
// a fast delete or move, treated as a no-op).
func (f *Filter) Validate(path string) (root string, ok bool) {
	cleaned := filepath.Clean(path)
	parent := filepath.Dir(cleaned)
	root, inRoot := f.roots[parent]
	if !inRoot {
		return "", false
	}
	name := filepath.Base(cleaned)
	if IsTransientName(name) {
		return "", false
	}
	// The sweeper writes the root's own bundle here; it must never be
	// treated as an arrival and classified into Archives.
	if name == archive.BundleName {
		return "", false
	}
	info, err := os.Lstat(cleaned)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return root, true
}

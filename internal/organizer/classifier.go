package organizer

import (
	"path/filepath"
	"strings"

	"tidy/internal/config"
)

// Classify maps a file name to its category folder name. The extension is
// taken after the last dot, lower-cased, and looked up in the configured
// rules; anything unmatched (including files without an extension) lands in
// the default category. Pure function of config and name.
func Classify(cfg *config.Config, name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return cfg.Category(ext)
}

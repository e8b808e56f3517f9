// Package testsupport provides shared helpers for package tests: configs
// seeded with per-test temp directories, fixture files with controlled
// content and ages, and queue stores with registered cleanup.
package testsupport

import (
	"path/filepath"
	"testing"

	"tidy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// one watched root under the temp base, logs alongside, settle delay off so
// tests run fast. Options are applied before finalization.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Watch.TargetDirectories = []string{filepath.Join(base, "watched")}
	cfgVal.Watch.SettleSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	MkdirAll(t, builder.cfg.Watch.TargetDirectories...)

	return builder.cfg
}

// WithArchive enables archival with the given staleness threshold in days.
func WithArchive(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Enabled = true
		b.cfg.Archive.Days = days
	}
}

// WithTargets replaces the watched roots. Relative names are placed under
// the test's temp base.
func WithTargets(names ...string) ConfigOption {
	return func(b *configBuilder) {
		targets := make([]string, 0, len(names))
		for _, name := range names {
			if filepath.IsAbs(name) {
				targets = append(targets, name)
				continue
			}
			targets = append(targets, filepath.Join(b.baseDir, name))
		}
		b.cfg.Watch.TargetDirectories = targets
	}
}

// WithCategories replaces the classification rules.
func WithCategories(defaultName string, rules map[string][]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories.Default = defaultName
		b.cfg.Categories.Rules = rules
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

package archive_test

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tidy/internal/archive"
	"tidy/internal/config"
	"tidy/internal/logging"
	"tidy/internal/pathlock"
	"tidy/internal/testsupport"
)

func newSweeper(t *testing.T, days int) (*archive.Sweeper, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithArchive(days))
	sweeper := archive.NewSweeper(cfg, logging.NewNop(), pathlock.NewTable())
	return sweeper, cfg
}

func bundleEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open bundle %s: %v", path, err)
	}
	defer zr.Close()

	entries := make(map[string]string, len(zr.File))
	for _, entry := range zr.File {
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", entry.Name, err)
		}
		entries[entry.Name] = string(data)
	}
	return entries
}

func TestSweepArchivesStaleFiles(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	stale := filepath.Join(root, "old.log")
	fresh := filepath.Join(root, "recent.log")
	testsupport.WriteFileAged(t, stale, "stale content", 10*24*time.Hour)
	testsupport.WriteFileAged(t, fresh, "fresh content", 24*time.Hour)

	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll: %v", err)
	}

	if _, err := os.Lstat(stale); !os.IsNotExist(err) {
		t.Fatal("stale file should have been removed after archiving")
	}
	if _, err := os.Lstat(fresh); err != nil {
		t.Fatalf("fresh file must be untouched: %v", err)
	}

	entries := bundleEntries(t, filepath.Join(root, archive.BundleName))
	if got := entries["old.log"]; got != "stale content" {
		t.Fatalf("bundle entry old.log = %q", got)
	}
	if _, ok := entries["recent.log"]; ok {
		t.Fatal("fresh file must not be in the bundle")
	}
}

func TestSweepAppendsWithoutLosingExistingEntries(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFileAged(t, filepath.Join(root, "first.txt"), "one", 10*24*time.Hour)
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	testsupport.WriteFileAged(t, filepath.Join(root, "second.txt"), "two", 10*24*time.Hour)
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	entries := bundleEntries(t, filepath.Join(root, archive.BundleName))
	if entries["first.txt"] != "one" || entries["second.txt"] != "two" {
		t.Fatalf("bundle entries = %v", entries)
	}
}

func TestSweepNeverArchivesTheBundleItself(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFileAged(t, filepath.Join(root, "old.txt"), "payload", 10*24*time.Hour)
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	// Backdate the bundle past the threshold and sweep again.
	bundle := filepath.Join(root, archive.BundleName)
	stamp := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(bundle, stamp, stamp); err != nil {
		t.Fatalf("chtimes bundle: %v", err)
	}
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	entries := bundleEntries(t, bundle)
	if _, ok := entries[archive.BundleName]; ok {
		t.Fatal("bundle must never contain itself")
	}
	if len(entries) != 1 {
		t.Fatalf("bundle entries = %v, want only old.txt", entries)
	}
}

func TestSweepEachDirectoryGetsOwnBundle(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFileAged(t, filepath.Join(root, "top.txt"), "top", 10*24*time.Hour)
	testsupport.WriteFileAged(t, filepath.Join(root, "Documents", "deep.txt"), "deep", 10*24*time.Hour)

	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll: %v", err)
	}

	top := bundleEntries(t, filepath.Join(root, archive.BundleName))
	if _, ok := top["top.txt"]; !ok {
		t.Fatalf("root bundle entries = %v", top)
	}
	if _, ok := top["deep.txt"]; ok {
		t.Fatal("subdirectory file must not land in the root bundle")
	}

	nested := bundleEntries(t, filepath.Join(root, "Documents", archive.BundleName))
	if nested["deep.txt"] != "deep" {
		t.Fatalf("nested bundle entries = %v", nested)
	}
}

func TestSweepDuplicateEntryNamesGetSuffixed(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFileAged(t, filepath.Join(root, "notes.txt"), "v1", 10*24*time.Hour)
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	testsupport.WriteFileAged(t, filepath.Join(root, "notes.txt"), "v2", 10*24*time.Hour)
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	entries := bundleEntries(t, filepath.Join(root, archive.BundleName))
	if entries["notes.txt"] != "v1" || entries["notes (1).txt"] != "v2" {
		t.Fatalf("bundle entries = %v", entries)
	}
}

func TestSweepSkipsHiddenFilesAndDirectories(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFileAged(t, filepath.Join(root, ".hidden"), "secret", 10*24*time.Hour)
	testsupport.WriteFileAged(t, filepath.Join(root, ".cache", "blob"), "cached", 10*24*time.Hour)

	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(root, ".hidden")); err != nil {
		t.Fatalf("hidden file must be left alone: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(root, ".cache", "blob")); err != nil {
		t.Fatalf("hidden directory contents must be left alone: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(root, archive.BundleName)); !os.IsNotExist(err) {
		t.Fatal("no bundle should be created when nothing qualifies")
	}
}

func TestSweepDisabledIsNoOp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sweeper := archive.NewSweeper(cfg, logging.NewNop(), pathlock.NewTable())
	root := cfg.Watch.TargetDirectories[0]

	stale := filepath.Join(root, "old.txt")
	testsupport.WriteFileAged(t, stale, "payload", 100*24*time.Hour)

	if sweeper.Enabled() {
		t.Fatal("sweeper should be disabled by default")
	}
	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll: %v", err)
	}
	if _, err := os.Lstat(stale); err != nil {
		t.Fatalf("disabled sweep must not touch files: %v", err)
	}
}

func TestSweepRemovesAbandonedTempBundles(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	// A crash between writing and renaming leaves a hidden temp bundle.
	leftover := filepath.Join(root, ".2f3a-dead-beef.zip.tmp")
	testsupport.WriteFileAged(t, leftover, "half-written", 10*24*time.Hour)
	hidden := filepath.Join(root, ".hidden")
	testsupport.WriteFileAged(t, hidden, "keep", 10*24*time.Hour)
	testsupport.WriteFileAged(t, filepath.Join(root, "old.txt"), "payload", 10*24*time.Hour)

	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll: %v", err)
	}

	if _, err := os.Lstat(leftover); !os.IsNotExist(err) {
		t.Fatal("abandoned temp bundle should have been removed")
	}
	if _, err := os.Lstat(hidden); err != nil {
		t.Fatalf("ordinary dotfiles must be left alone: %v", err)
	}
	entries := bundleEntries(t, filepath.Join(root, archive.BundleName))
	if len(entries) != 1 || entries["old.txt"] != "payload" {
		t.Fatalf("bundle entries = %v", entries)
	}
}

func TestSweepLeavesCorruptBundleUntouched(t *testing.T) {
	sweeper, cfg := newSweeper(t, 5)
	root := cfg.Watch.TargetDirectories[0]

	bundle := filepath.Join(root, archive.BundleName)
	testsupport.WriteFile(t, bundle, "not a zip file")
	stale := filepath.Join(root, "old.txt")
	testsupport.WriteFileAged(t, stale, "payload", 10*24*time.Hour)

	if err := sweeper.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll should absorb per-directory failures: %v", err)
	}

	if got := testsupport.ReadFile(t, bundle); got != "not a zip file" {
		t.Fatalf("unreadable bundle was rewritten: %q", got)
	}
	if _, err := os.Lstat(stale); err != nil {
		t.Fatalf("source must survive a failed archive attempt: %v", err)
	}
}

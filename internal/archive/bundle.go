package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BundleName is the per-directory archive container file name.
const BundleName = "archive.zip"

// isAbandonedTempBundle matches the hidden temp names appendEntries writes
// before the final rename. Only a crash mid-rewrite leaves one behind.
func isAbandonedTempBundle(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".zip.tmp")
}

type pendingEntry struct {
	source string
	name   string
	size   int64
	digest string
}

// appendEntries rewrites dir's bundle so it additionally contains the given
// files, and returns the sources whose presence in the new bundle was
// verified. On any error the existing bundle is left untouched and no source
// may be deleted.
func appendEntries(dir string, sources []string) ([]string, error) {
	bundlePath := filepath.Join(dir, BundleName)
	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".zip.tmp")

	pending, err := writeBundle(bundlePath, tmpPath, sources)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if len(pending) == 0 {
		_ = os.Remove(tmpPath)
		return nil, nil
	}

	if err := verifyBundle(tmpPath, pending); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, bundlePath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("replace bundle: %w", err)
	}

	archived := make([]string, 0, len(pending))
	for _, entry := range pending {
		archived = append(archived, entry.source)
	}
	return archived, nil
}

func writeBundle(bundlePath, tmpPath string, sources []string) (pending []pendingEntry, err error) {
	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create temp bundle: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(out)
	used := make(map[string]struct{})

	existing, err := zip.OpenReader(bundlePath)
	switch {
	case err == nil:
		defer existing.Close()
		for _, entry := range existing.File {
			if copyErr := zw.Copy(entry); copyErr != nil {
				return nil, fmt.Errorf("carry existing entry %s: %w", entry.Name, copyErr)
			}
			used[entry.Name] = struct{}{}
		}
	case errors.Is(err, fs.ErrNotExist):
		// First bundle for this directory.
	default:
		// A bundle we cannot read must not be overwritten.
		return nil, fmt.Errorf("open existing bundle: %w", err)
	}

	for _, source := range sources {
		entry, skip, addErr := addEntry(zw, used, source)
		if addErr != nil {
			return nil, addErr
		}
		if skip {
			continue
		}
		pending = append(pending, entry)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize bundle: %w", err)
	}
	return pending, nil
}

func addEntry(zw *zip.Writer, used map[string]struct{}, source string) (pendingEntry, bool, error) {
	in, err := os.Open(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Lost a race with another process; nothing to archive.
			return pendingEntry{}, true, nil
		}
		return pendingEntry{}, false, fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return pendingEntry{}, false, fmt.Errorf("stat %s: %w", source, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return pendingEntry{}, false, fmt.Errorf("header for %s: %w", source, err)
	}
	header.Name = uniqueEntryName(used, filepath.Base(source))
	header.Method = zip.Deflate
	used[header.Name] = struct{}{}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return pendingEntry{}, false, fmt.Errorf("create entry %s: %w", header.Name, err)
	}

	hasher := sha256.New()
	written, err := io.Copy(w, io.TeeReader(in, hasher))
	if err != nil {
		return pendingEntry{}, false, fmt.Errorf("write entry %s: %w", header.Name, err)
	}
	if written != info.Size() {
		return pendingEntry{}, false, fmt.Errorf("entry %s: wrote %d of %d bytes", header.Name, written, info.Size())
	}

	return pendingEntry{
		source: source,
		name:   header.Name,
		size:   info.Size(),
		digest: hex.EncodeToString(hasher.Sum(nil)),
	}, false, nil
}

// verifyBundle re-reads the freshly written bundle and checks every new
// entry's size and digest against what was streamed in.
func verifyBundle(path string, pending []pendingEntry) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("reopen bundle for verification: %w", err)
	}
	defer zr.Close()

	byName := make(map[string]*zip.File, len(zr.File))
	for _, entry := range zr.File {
		byName[entry.Name] = entry
	}

	for _, want := range pending {
		entry, ok := byName[want.name]
		if !ok {
			return fmt.Errorf("verify %s: entry missing from bundle", want.name)
		}
		if int64(entry.UncompressedSize64) != want.size {
			return fmt.Errorf("verify %s: size %d, want %d", want.name, entry.UncompressedSize64, want.size)
		}
		digest, err := hashEntry(entry)
		if err != nil {
			return fmt.Errorf("verify %s: %w", want.name, err)
		}
		if digest != want.digest {
			return fmt.Errorf("verify %s: digest mismatch", want.name)
		}
	}
	return nil
}

func hashEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, rc); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func uniqueEntryName(used map[string]struct{}, name string) string {
	if _, taken := used[name]; !taken {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, counter, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

package watch_test

import (
	"path/filepath"
	"testing"

	"tidy/internal/archive"
	"tidy/internal/testsupport"
	"tidy/internal/watch"
)

func TestIsTransientName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"report.pdf", false},
		{"movie.mp4.part", true},
		{"download.CRDOWNLOAD", true},
		{"image.png.download", true},
		{"build.tmp", true},
		{".DS_Store", true},
		{".hidden.pdf", true},
		{"partly.pdf", false},
		{"tmpfile.txt", false},
	}
	for _, tc := range cases {
		if got := watch.IsTransientName(tc.name); got != tc.want {
			t.Errorf("IsTransientName(%q) = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestFilterValidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := cfg.Watch.TargetDirectories[0]
	filter := watch.NewFilter(cfg)

	valid := filepath.Join(root, "report.pdf")
	testsupport.WriteFile(t, valid, "content")

	gotRoot, ok := filter.Validate(valid)
	if !ok {
		t.Fatal("file directly inside a root must validate")
	}
	if gotRoot != root {
		t.Fatalf("root = %q, want %q", gotRoot, root)
	}
}

func TestFilterRejectsInvalidPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := cfg.Watch.TargetDirectories[0]
	filter := watch.NewFilter(cfg)

	nested := filepath.Join(root, "Documents", "inner.pdf")
	testsupport.WriteFile(t, nested, "content")
	transient := filepath.Join(root, "download.pdf.part")
	testsupport.WriteFile(t, transient, "content")
	bundle := filepath.Join(root, archive.BundleName)
	testsupport.WriteFile(t, bundle, "zip bytes")
	dir := filepath.Join(root, "subdir")
	testsupport.MkdirAll(t, dir)
	outside := filepath.Join(testsupport.BaseDir(cfg), "elsewhere.pdf")
	testsupport.WriteFile(t, outside, "content")

	cases := []struct {
		label string
		path  string
	}{
		{"nested below a category folder", nested},
		{"transient suffix", transient},
		{"the root's own archive bundle", bundle},
		{"directory", dir},
		{"outside the watched root", outside},
		{"nonexistent", filepath.Join(root, "ghost.pdf")},
	}
	for _, tc := range cases {
		if _, ok := filter.Validate(tc.path); ok {
			t.Errorf("%s: Validate(%q) accepted, want rejection", tc.label, tc.path)
		}
	}
}

func TestListRootFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := cfg.Watch.TargetDirectories[0]

	testsupport.WriteFile(t, filepath.Join(root, "a.txt"), "a")
	testsupport.WriteFile(t, filepath.Join(root, "b.pdf"), "b")
	testsupport.WriteFile(t, filepath.Join(root, ".hidden"), "h")
	testsupport.WriteFile(t, filepath.Join(root, "partial.iso.part"), "p")
	testsupport.WriteFile(t, filepath.Join(root, archive.BundleName), "zip bytes")
	testsupport.MkdirAll(t, filepath.Join(root, "Documents"))

	files, err := watch.ListRootFiles(root)
	if err != nil {
		t.Fatalf("ListRootFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.pdf"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestListRootFilesMissingRoot(t *testing.T) {
	files, err := watch.ListRootFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing root must not error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %v, want none", files)
	}
}

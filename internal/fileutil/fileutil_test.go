package fileutil_test

import (
	"testing"

	"github.com/spf13/afero"

	"logmon/internal/fileutil"
)

func TestSizeReportsFileLength(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/logs/app.txt", []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	size, ok := fileutil.Size(fs, "/logs/app.txt")
	if !ok {
		t.Fatal("expected size query to succeed")
	}
	if size != 6 {
		t.Fatalf("unexpected size: got %d want 6", size)
	}
}

func TestSizeMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, ok := fileutil.Size(fs, "/logs/absent.txt"); ok {
		t.Fatal("expected size query to fail for missing file")
	}
}

func TestSizeRejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/logs", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, ok := fileutil.Size(fs, "/logs"); ok {
		t.Fatal("expected size query to fail for directory")
	}
}

func TestAppendStringCreatesAndGrows(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fileutil.AppendString(fs, "/logs/app.txt", "a\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := fileutil.AppendString(fs, "/logs/app.txt", "b\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := afero.ReadFile(fs, "/logs/app.txt")
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "a\nb\n" {
		t.Fatalf("unexpected content: %q", string(data))
	}
}

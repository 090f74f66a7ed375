package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"logmon/internal/preflight"
)

func TestCheckDirectoryAccessPassesForWritableDir(t *testing.T) {
	result := preflight.CheckDirectoryAccess("Log directory", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestCheckDirectoryAccessFailsForMissingDir(t *testing.T) {
	result := preflight.CheckDirectoryAccess("Log directory", filepath.Join(t.TempDir(), "absent"))
	if result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestCheckDirectoryAccessFailsForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("Log directory", path)
	if result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestCheckTargetReadablePassesWhenAbsent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "events")
	result := preflight.CheckTargetReadable(target)
	if !result.Passed {
		t.Fatalf("expected absent target to pass, got %+v", result)
	}
}

func TestCheckTargetReadablePassesForReadableFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "events")
	if err := os.WriteFile(target+".txt", []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckTargetReadable(target)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestPassedAggregates(t *testing.T) {
	ok := []preflight.Result{{Passed: true}, {Passed: true}}
	if !preflight.Passed(ok) {
		t.Fatal("expected aggregate pass")
	}
	mixed := append(ok, preflight.Result{Passed: false})
	if preflight.Passed(mixed) {
		t.Fatal("expected aggregate failure")
	}
}

package daemonctl_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"logmon/internal/daemonctl"
	"logmon/internal/testsupport"
)

func TestWaitForClientTimesOutWithoutSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "absent.sock")
	if _, err := daemonctl.WaitForClient(socket, 300*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestProcessInfoReportsNotRunningForMissingSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "absent.sock")
	reachable, pid, err := daemonctl.ProcessInfo(socket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reachable || pid != 0 {
		t.Fatalf("expected unreachable daemon, got reachable=%v pid=%d", reachable, pid)
	}
}

func TestForceKillRefusesCurrentProcess(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "logmond.pid")
	data := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(pidPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := daemonctl.ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
}

func TestDeriveLogDirPrefersLockPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if got := daemonctl.DeriveLogDir("/run/logmon/logmond.lock", cfg); got != "/run/logmon" {
		t.Fatalf("unexpected log dir: %q", got)
	}
	if got := daemonctl.DeriveLogDir("", cfg); got != cfg.Paths.LogDir {
		t.Fatalf("expected config fallback, got %q", got)
	}
	if got := daemonctl.DeriveLogDir("", nil); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

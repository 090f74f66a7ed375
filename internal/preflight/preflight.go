// Package preflight verifies the daemon's environment before monitoring
// starts: the log directory must be writable and the monitored targets
// should be readable where they already exist.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"logmon/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	for _, target := range cfg.Monitor.Targets {
		results = append(results, CheckTargetReadable(target))
	}
	return results
}

// Passed reports whether every result succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTargetReadable verifies that a monitor target's current file is
// readable. A file that does not exist yet passes: the writer may simply not
// have produced output, and the poller picks it up when it appears.
func CheckTargetReadable(target string) Result {
	name := fmt.Sprintf("Target %s", target)
	path := target + ".txt"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not present yet)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

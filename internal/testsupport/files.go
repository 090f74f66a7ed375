package testsupport

import (
	"os"
	"testing"
)

// WriteLog replaces the contents of a log file with the given lines, each
// newline-terminated.
func WriteLog(t testing.TB, path string, lines ...string) {
	t.Helper()
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write log %s: %v", path, err)
	}
}

// AppendLog appends raw bytes to a log file, creating it if needed. The
// caller controls newline placement so partial writes can be simulated.
func AppendLog(t testing.TB, path, data string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log %s: %v", path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(data); err != nil {
		t.Fatalf("append log %s: %v", path, err)
	}
}

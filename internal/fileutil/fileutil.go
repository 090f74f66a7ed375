package fileutil

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// Size reports the current byte size of the file at path. The second return
// value is false when the file does not exist, cannot be stat'ed, or is a
// directory.
func Size(fs afero.Fs, path string) (uint64, bool) {
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	size := info.Size()
	if size < 0 {
		return 0, false
	}
	return uint64(size), true
}

// Exists reports whether path names an existing regular file.
func Exists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}

// AppendString appends data to the file at path, creating it when absent.
// Used by tests and tooling that simulate a writer which keeps the file open.
func AppendString(fs afero.Fs, path, data string) error {
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

package monitor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"logmon/internal/fileutil"
	"logmon/internal/logging"
)

const (
	pollInterval = time.Second

	currentSuffix = ".txt"
	rotatedSuffix = ".1.txt"
)

// KeyFunc extracts a chronological sort key from a log line. It reports
// false when the line carries no usable key; such lines are skipped during
// the initial scan but still advance the read cursor.
type KeyFunc func(line string) (uint64, bool)

// Callback receives each newly completed line, without its trailing newline,
// in file order. It is invoked from the poll goroutine; one invocation per
// line, never repeated.
type Callback func(line string)

// Monitor owns the initial snapshot and the tail poller for a set of log
// targets. Construction performs the snapshot scan synchronously; Start arms
// the poller.
type Monitor struct {
	fs       afero.Fs
	logger   *slog.Logger
	keyFunc  KeyFunc
	callback Callback

	initial []Line
	files   []string
	cursors map[string]int64

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a monitor over the real filesystem. Each target base path
// contributes two files to the initial scan, base+".1.txt" then base+".txt",
// and one file, base+".txt", to the poll set.
func New(targets []string, callback Callback, keyFunc KeyFunc, logger *slog.Logger) *Monitor {
	return NewWithFS(afero.NewOsFs(), targets, callback, keyFunc, logger)
}

// NewWithFS is New with an explicit filesystem.
func NewWithFS(fsys afero.Fs, targets []string, callback Callback, keyFunc KeyFunc, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if keyFunc == nil {
		keyFunc = func(string) (uint64, bool) { return 0, false }
	}
	m := &Monitor{
		fs:       fsys,
		logger:   logging.NewComponentLogger(logger, "monitor"),
		keyFunc:  keyFunc,
		callback: callback,
		cursors:  make(map[string]int64),
	}
	buffer := &snapshot{}
	for _, target := range targets {
		m.scanInitial(target+rotatedSuffix, buffer)
		m.scanInitial(target+currentSuffix, buffer)
		m.files = append(m.files, target+currentSuffix)
	}
	m.initial = buffer.lines
	return m
}

// InitialLines returns the snapshot assembled at construction, oldest first.
func (m *Monitor) InitialLines() []Line {
	out := make([]Line, len(m.initial))
	copy(out, m.initial)
	return out
}

// WatchedFiles returns the files the poller observes, in target order.
func (m *Monitor) WatchedFiles() []string {
	out := make([]string, len(m.files))
	copy(out, m.files)
	return out
}

// Cursors returns a copy of the per-file read cursors.
func (m *Monitor) Cursors() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.cursors))
	for path, cursor := range m.cursors {
		out[path] = cursor
	}
	return out
}

// Start launches the poll loop. The monitor keeps running until Stop is
// called or ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("monitor already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.loop(runCtx)
	m.logger.Info("log monitor started",
		logging.Int("targets", len(m.files)),
		logging.Duration("interval", pollInterval))
	return nil
}

// Stop cancels the poll loop and waits for the in-flight tick to finish.
// Safe to call when the monitor is not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("log monitor stopped")
}

// loop owns the captured run context: Stop mutates the monitor's fields
// while a tick may still be in flight, so the goroutine never reads them.
func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll runs one tick: for each watched file, compare current size with the
// cursor and read when they differ. A shrunken file (truncation, rotation
// swap) also trips the comparison and is re-read from the top.
func (m *Monitor) poll() {
	for _, path := range m.files {
		size, ok := fileutil.Size(m.fs, path)
		if !ok {
			continue
		}
		m.mu.Lock()
		cursor := m.cursors[path]
		m.mu.Unlock()
		if int64(size) != cursor {
			m.readPass(path, int64(size), cursor)
		}
	}
}

// scanInitial reads one rotation file into the snapshot buffer and records
// the read cursor for it. Only complete, newline-terminated lines are
// consumed; a trailing partial line stays beyond the cursor for the poller
// to deliver once the writer finishes it. A file that cannot be opened gets
// cursor zero, so every line it ever gains is treated as new.
func (m *Monitor) scanInitial(path string, buffer *snapshot) {
	file, err := m.fs.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("initial scan skipped unreadable file",
				logging.String(logging.FieldFile, path),
				logging.Error(err))
		}
		m.cursors[path] = 0
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var offset int64
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				m.logger.Warn("initial scan aborted mid-file",
					logging.String(logging.FieldFile, path),
					logging.Error(err))
			}
			break
		}
		offset += int64(len(raw))
		line := strings.TrimSuffix(raw, "\n")
		if key, ok := m.keyFunc(line); ok {
			buffer.add(key, line)
		}
	}
	m.cursors[path] = offset
}

// readPass delivers the lines that appeared since the cursor. When the file
// grew, reading resumes at the cursor; when it shrank, the content was
// replaced and reading restarts from the top. The cursor advances only past
// lines that were actually delivered, so an interrupted pass resumes without
// loss or repeats on the next tick.
func (m *Monitor) readPass(path string, size, cursor int64) {
	file, err := m.fs.Open(path)
	if err != nil {
		m.logger.Warn("watched file became unreadable",
			logging.String(logging.FieldFile, path),
			logging.Error(err))
		return
	}
	defer file.Close()

	var offset int64
	if cursor < size {
		if _, err := file.Seek(cursor, io.SeekStart); err != nil {
			m.logger.Warn("seek to cursor failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err))
			return
		}
		offset = cursor
	}

	reader := bufio.NewReader(file)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				m.logger.Warn("read pass aborted mid-file",
					logging.String(logging.FieldFile, path),
					logging.Error(err))
			}
			return
		}
		offset += int64(len(raw))
		if m.callback != nil {
			m.callback(strings.TrimSuffix(raw, "\n"))
		}
		m.mu.Lock()
		m.cursors[path] = offset
		m.mu.Unlock()
	}
}

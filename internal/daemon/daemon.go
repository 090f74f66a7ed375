// Package daemon coordinates the monitor, line hub, and optional archive
// behind a single-instance lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"logmon/internal/archive"
	"logmon/internal/config"
	"logmon/internal/logging"
	"logmon/internal/monitor"
	"logmon/internal/sortkey"
)

const hubCapacity = 1024

// Daemon owns the monitoring pipeline and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	mon        *monitor.Monitor
	hub        *monitor.Hub
	store      *archive.Store
	instanceID string
	startedAt  time.Time

	lockPath  string
	lock      *flock.Flock
	delivered atomic.Uint64

	// lifecycle serializes Start/Stop; running stays atomic so Status
	// and Running can read it without contending with a stop in flight.
	lifecycle sync.Mutex
	running   atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	InstanceID     string
	StartedAt      time.Time
	Targets        []string
	WatchedFiles   []string
	Cursors        map[string]int64
	SnapshotLines  int
	DeliveredLines uint64
	ArchiveEnabled bool
	ArchivedLines  int64
	ArchivePath    string
	LockFilePath   string
	SocketPath     string
}

// New constructs a daemon with initialized dependencies. The store may be
// nil when archiving is disabled. Construction scans the targets' rotation
// files into the initial snapshot.
func New(cfg *config.Config, store *archive.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		instanceID: uuid.NewString(),
		lockPath:   cfg.LockPath(),
		lock:       flock.New(cfg.LockPath()),
	}

	hub := monitor.NewHub(hubCapacity)
	if store != nil {
		hub.AddSink(store)
	}
	d.hub = hub
	d.mon = monitor.New(cfg.Monitor.Targets, func(line string) {
		d.delivered.Add(1)
		hub.Publish(line)
	}, sortkey.Parse, logger)

	return d, nil
}

// Start acquires the daemon lock and launches the poll loop. A poll loop
// that fails to start is downgraded to a warning: the initial snapshot is
// already available and serving it is better than exiting.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another logmond instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.mon.Start(d.ctx); err != nil {
		d.logger.Warn("poll loop unavailable, serving snapshot only",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "restart the daemon to resume live tailing"))
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("logmond started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldInstanceID, d.instanceID),
		logging.Int("targets", len(d.cfg.Monitor.Targets)))
	return nil
}

// Stop halts polling and releases the daemon lock.
func (d *Daemon) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mon.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("logmond stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Snapshot returns the initial lines assembled at construction, oldest first.
func (d *Daemon) Snapshot() []monitor.Line {
	return d.mon.InitialLines()
}

// Hub returns the delivered-line fan-out buffer.
func (d *Daemon) Hub() *monitor.Hub {
	return d.hub
}

// Archive returns the line archive, or nil when archiving is disabled.
func (d *Daemon) Archive() *archive.Store {
	return d.store
}

// Running reports whether Start has completed and Stop has not.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status assembles runtime information for IPC consumers.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:        d.running.Load(),
		InstanceID:     d.instanceID,
		StartedAt:      d.startedAt,
		Targets:        append([]string(nil), d.cfg.Monitor.Targets...),
		WatchedFiles:   d.mon.WatchedFiles(),
		Cursors:        d.mon.Cursors(),
		SnapshotLines:  len(d.mon.InitialLines()),
		DeliveredLines: d.delivered.Load(),
		ArchiveEnabled: d.store != nil,
		LockFilePath:   d.lockPath,
		SocketPath:     d.cfg.SocketPath(),
	}
	if d.store != nil {
		status.ArchivePath = d.store.Path()
		if count, err := d.store.Count(ctx); err == nil {
			status.ArchivedLines = count
		}
	}
	return status
}

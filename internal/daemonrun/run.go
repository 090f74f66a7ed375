// Package daemonrun wires the daemon process: logger, pid file, archive,
// IPC server, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"logmon/internal/archive"
	"logmon/internal/config"
	"logmon/internal/daemon"
	"logmon/internal/ipc"
	"logmon/internal/logging"
	"logmon/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the logmond runtime loop and blocks until SIGINT/SIGTERM or
// context cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("logmond-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update logmond.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "logmond-*.log", Exclude: []string{logPath}},
	)

	logPreflight(logger, cfg)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	var store *archive.Store
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg)
		if err != nil {
			logger.Error("open line archive", logging.Error(err))
			return err
		}
		if pruned, pruneErr := store.Prune(signalCtx, cfg.Archive.RetentionDays); pruneErr != nil {
			logger.Warn("archive prune failed", logging.Error(pruneErr))
		} else if pruned > 0 {
			logger.Info("archive pruned", logging.Int64("removed_lines", pruned))
		}
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check that no other logmond holds the lock"),
			logging.String(logging.FieldImpact, "log targets are not being monitored"),
		)
	}

	<-signalCtx.Done()
	logger.Info("logmond shutting down")
	return nil
}

func logPreflight(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "monitoring may miss or fail to read this target"))
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "logmond.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

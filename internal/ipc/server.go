package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"logmon/internal/daemon"
	"logmon/internal/logging"
	"logmon/internal/monitor"
)

const maxFollowWait = 30 * time.Second

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Logmon", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun logmon stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func wireEvents(events []monitor.Event) []LineEvent {
	out := make([]LineEvent, 0, len(events))
	for _, evt := range events {
		out = append(out, LineEvent{Seq: evt.Seq, Time: evt.Time, Text: evt.Text})
	}
	return out
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("monitor start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "monitoring started"
	s.log().Info("monitoring started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("monitor stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("monitoring stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.InstanceID = status.InstanceID
	resp.StartedAt = status.StartedAt
	resp.Targets = status.Targets
	resp.WatchedFiles = status.WatchedFiles
	resp.Cursors = status.Cursors
	resp.SnapshotLines = status.SnapshotLines
	resp.DeliveredLines = status.DeliveredLines
	resp.ArchiveEnabled = status.ArchiveEnabled
	resp.ArchivedLines = status.ArchivedLines
	resp.ArchivePath = status.ArchivePath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Snapshot(_ SnapshotRequest, resp *SnapshotResponse) error {
	lines := s.daemon.Snapshot()
	resp.Lines = make([]SnapshotLine, 0, len(lines))
	for _, line := range lines {
		resp.Lines = append(resp.Lines, SnapshotLine{Key: line.Key, Text: line.Text})
	}
	return nil
}

func (s *service) Follow(req FollowRequest, resp *FollowResponse) error {
	wait := time.Duration(req.WaitMS) * time.Millisecond
	if wait > maxFollowWait {
		wait = maxFollowWait
	}

	ctx := s.ctx
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	events, next, err := s.daemon.Hub().Fetch(ctx, req.Since, req.Limit, wait > 0)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Events = wireEvents(events)
	resp.Next = next
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	store := s.daemon.Archive()
	if store == nil {
		return errors.New("archive is disabled; enable [archive] in the config")
	}
	events, err := store.Recent(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Events = wireEvents(events)
	return nil
}

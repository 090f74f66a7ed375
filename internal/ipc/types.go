package ipc

import "time"

// StartRequest triggers monitoring startup.
type StartRequest struct{}

// StartResponse indicates whether monitoring was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest halts monitoring.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running        bool             `json:"running"`
	InstanceID     string           `json:"instance_id"`
	StartedAt      time.Time        `json:"started_at"`
	Targets        []string         `json:"targets"`
	WatchedFiles   []string         `json:"watched_files"`
	Cursors        map[string]int64 `json:"cursors"`
	SnapshotLines  int              `json:"snapshot_lines"`
	DeliveredLines uint64           `json:"delivered_lines"`
	ArchiveEnabled bool             `json:"archive_enabled"`
	ArchivedLines  int64            `json:"archived_lines"`
	ArchivePath    string           `json:"archive_path,omitempty"`
	LockPath       string           `json:"lock_path"`
	SocketPath     string           `json:"socket_path"`
	PID            int              `json:"pid"`
}

// SnapshotRequest fetches the initial snapshot assembled at daemon startup.
type SnapshotRequest struct{}

// SnapshotLine is one entry of the initial snapshot.
type SnapshotLine struct {
	Key  uint64 `json:"key"`
	Text string `json:"text"`
}

// SnapshotResponse carries the snapshot, oldest line first.
type SnapshotResponse struct {
	Lines []SnapshotLine `json:"lines"`
}

// LineEvent is one delivered line on the wire.
type LineEvent struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"ts"`
	Text string    `json:"text"`
}

// FollowRequest fetches delivered lines after a sequence number. When WaitMS
// is positive the server parks the call until a line arrives or the wait
// elapses.
type FollowRequest struct {
	Since  uint64 `json:"since"`
	Limit  int    `json:"limit"`
	WaitMS int    `json:"wait_ms"`
}

// FollowResponse carries new delivered lines and the cursor for the next call.
type FollowResponse struct {
	Events []LineEvent `json:"events"`
	Next   uint64      `json:"next"`
}

// HistoryRequest fetches archived lines.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse carries archived lines, oldest first.
type HistoryResponse struct {
	Events []LineEvent `json:"events"`
}

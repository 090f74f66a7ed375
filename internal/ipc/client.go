package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start monitoring.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Logmon.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop monitoring.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Logmon.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Logmon.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Snapshot retrieves the initial snapshot assembled at daemon startup.
func (c *Client) Snapshot() (*SnapshotResponse, error) {
	var resp SnapshotResponse
	if err := c.client.Call("Logmon.Snapshot", SnapshotRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Follow retrieves delivered lines after the given sequence number.
func (c *Client) Follow(req FollowRequest) (*FollowResponse, error) {
	var resp FollowResponse
	if err := c.client.Call("Logmon.Follow", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves archived lines.
func (c *Client) History(req HistoryRequest) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Logmon.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

package player

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"
)

const (
	ipcTimeout = 2 * time.Second

	// statusSuccess is the marker mpv puts in the error field of a
	// successful response.
	statusSuccess = "success"
)

// Response is a single reply from the player's IPC socket.
type Response struct {
	Err  string `json:"error"`
	Data any    `json:"data,omitempty"`
}

// OK reports whether the response carries the success marker.
func (r *Response) OK() bool { return r != nil && r.Err == statusSuccess }

// Transport issues one-shot commands against the player's IPC socket.
// All failures degrade to nil/false; IPC is never fatal to the caller.
type Transport interface {
	Send(parts ...any) *Response
	GetProperty(name string) (any, bool)
	SetProperty(name string, value any) bool
}

// Client implements Transport over a unix stream socket, opening a fresh
// connection per command exactly as mpv's IPC protocol expects.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a Client for the given socket path.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: ipcTimeout}
}

// Send serializes {"command": parts} as a JSON line, writes it, and reads
// until a newline or peer close. Returns nil on any failure: a missing
// socket short-circuits without connecting, timeouts are logged at debug
// level, everything else at error level.
func (c *Client) Send(parts ...any) *Response {
	if _, err := os.Stat(c.socketPath); err != nil {
		slog.Debug("ipc: socket not available", "path", c.socketPath)
		return nil
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		c.logSendError("connect", parts, err)
		return nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	payload, err := json.Marshal(map[string]any{"command": parts})
	if err != nil {
		slog.Error("ipc: could not encode command", "command", parts, "err", err)
		return nil
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		c.logSendError("write", parts, err)
		return nil
	}

	// Accumulate until a newline byte or socket close
	var raw []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		raw = append(raw, buf[:n]...)
		if bytes.IndexByte(buf[:n], '\n') >= 0 {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			c.logSendError("read", parts, err)
			return nil
		}
	}

	if len(raw) == 0 {
		return nil
	}
	line, _, _ := bytes.Cut(raw, []byte{'\n'})

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		slog.Error("ipc: could not parse response", "command", parts, "err", err)
		return nil
	}
	return &resp
}

// GetProperty reads a named player property. The second return is false
// when the player is unreachable or reported an error.
func (c *Client) GetProperty(name string) (any, bool) {
	resp := c.Send("get_property", name)
	if !resp.OK() {
		return nil, false
	}
	return resp.Data, true
}

// SetProperty writes a named player property.
func (c *Client) SetProperty(name string, value any) bool {
	return c.Send("set_property", name, value).OK()
}

func (c *Client) logSendError(stage string, parts []any, err error) {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		// Timeouts are routine while the player is busy (e.g. mid-seek)
		slog.Debug("ipc: timeout", "stage", stage, "command", parts)
		return
	}
	slog.Error("ipc: command failed", "stage", stage, "command", parts, "err", err)
}

package player

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	// DefaultSocketPath is the well-known mpv IPC socket location. It is
	// shared across restarts, so stale entries must be removed before
	// every launch.
	DefaultSocketPath = "/tmp/mpv-socket"

	socketWaitAttempts = 20
	socketWaitInterval = 100 * time.Millisecond
	sigtermTimeout     = 5 * time.Second
	sigkillTimeout     = 2 * time.Second
)

// Process is a handle to a spawned player process. The controller owns
// exactly one at a time.
type Process interface {
	Pid() int
	// Alive reports whether the process is still running, without blocking.
	Alive() bool
	// Terminate stops the process: SIGTERM, bounded wait, then SIGKILL.
	// Never returns an error; failures are logged and absorbed.
	Terminate()
}

// Launcher spawns the external player and manages its IPC socket file.
// Tests substitute a fake that simulates readiness and process death.
type Launcher interface {
	Launch(args []string) (Process, error)
	// SocketPath is where the spawned player will create its IPC socket.
	SocketPath() string
	// AwaitSocket polls for the IPC socket to materialize, returning
	// false once the attempts are exhausted.
	AwaitSocket() bool
	// CleanupSocket removes the socket file if present. Idempotent.
	CleanupSocket()
}

// Supervisor is the real Launcher. It spawns mpv in its own process
// group so termination can take the whole group down.
type Supervisor struct {
	binary     string
	socketPath string
}

// NewSupervisor creates a Supervisor and removes any stale socket left
// behind by a previous run.
func NewSupervisor(binary, socketPath string) *Supervisor {
	s := &Supervisor{binary: binary, socketPath: socketPath}
	s.CleanupSocket()
	return s
}

func (s *Supervisor) SocketPath() string { return s.socketPath }

// Launch spawns the player with stdin closed and output discarded.
// It never waits for completion; a background goroutine reaps the child.
func (s *Supervisor) Launch(args []string) (Process, error) {
	cmd := exec.Command(s.binary, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &osProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()

	slog.Debug("player: process started", "pid", cmd.Process.Pid, "cmd", s.binary)
	return p, nil
}

// AwaitSocket polls for socket-file existence, 20 attempts spaced 100ms
// apart. Returns false on timeout, never errors.
func (s *Supervisor) AwaitSocket() bool {
	for attempt := 0; attempt < socketWaitAttempts; attempt++ {
		if _, err := os.Stat(s.socketPath); err == nil {
			return true
		}
		time.Sleep(socketWaitInterval)
	}
	return false
}

// CleanupSocket deletes the socket path if present. Called on init and
// after every termination so the next launch never sees a stale socket.
func (s *Supervisor) CleanupSocket() {
	err := os.Remove(s.socketPath)
	if err == nil {
		slog.Debug("player: cleaned up stale socket", "path", s.socketPath)
		return
	}
	if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("player: could not clean up socket", "path", s.socketPath, "err", err)
	}
}

// osProcess wraps an exec.Cmd whose Wait runs in a background goroutine.
type osProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *osProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *osProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *osProcess) Terminate() {
	if p.cmd.Process == nil {
		return
	}
	pid := p.cmd.Process.Pid

	// Signal the whole process group
	_ = syscall.Kill(-pid, syscall.SIGTERM)
	if p.waitFor(sigtermTimeout) {
		slog.Debug("player: process terminated", "pid", pid)
		return
	}

	slog.Warn("player: process didn't terminate gracefully, forcing kill", "pid", pid)
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	if !p.waitFor(sigkillTimeout) {
		slog.Error("player: process still alive after SIGKILL", "pid", pid)
	}
}

func (p *osProcess) waitFor(d time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(d):
		return false
	}
}

// Package player supervises an external mpv process and drives it over
// its line-oriented JSON IPC socket. The Controller is the single source
// of truth for playback state; every mutating operation is serialized
// under one lock so concurrent HTTP callers cannot interleave launches
// or tear state.
package player

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/keep-on-walking/headless-mpv/internal/config"
	"github.com/keep-on-walking/headless-mpv/internal/models"
)

const (
	// playSettleDelay gives mpv time to open the file before the first
	// duration query.
	playSettleDelay = 500 * time.Millisecond
	// seekSettleDelay precedes the ao-reload audio resync after a seek.
	seekSettleDelay = 100 * time.Millisecond
)

// Controller owns the player process handle and the observable playback
// state. All public operations return a bare success flag; internal
// faults are logged and absorbed, never propagated.
type Controller struct {
	mu       sync.Mutex
	launcher Launcher
	ipc      Transport

	mediaDir        string
	hardwareAccel   bool
	hdmiOutput      string
	audioInHeadless bool

	proc        Process
	state       models.PlayerState
	currentFile string
	position    float64
	duration    float64
	volume      int

	// Settle delays are fields so tests don't pay real-time sleeps.
	playSettle time.Duration
	seekSettle time.Duration

	// poll paces live property reads in Status so chatty status clients
	// can't hammer the IPC socket; between polls the cache is served.
	poll *rate.Limiter
}

// New creates a Controller. The launcher has already removed any stale
// socket from a prior run (NewSupervisor does this on construction).
func New(launcher Launcher, ipc Transport, cfg *config.Config) *Controller {
	c := &Controller{
		launcher:        launcher,
		ipc:             ipc,
		mediaDir:        cfg.MediaDir,
		hardwareAccel:   cfg.HardwareAccel,
		hdmiOutput:      cfg.HDMIOutput,
		audioInHeadless: cfg.AudioInHeadless,
		state:           models.StateStopped,
		volume:          cfg.Volume,
		playSettle:      playSettleDelay,
		seekSettle:      seekSettleDelay,
		poll:            rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
	slog.Info("player: controller initialized", "media_dir", cfg.MediaDir, "hdmi_output", cfg.HDMIOutput)
	return c
}

// Play starts playback of the given file, stopping any current playback
// first. Returns false when the file is missing, the spawn fails, or the
// IPC socket never materializes; in the latter cases the partial process
// is torn down so nothing is left orphaned.
func (c *Controller) Play(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked(path)
}

func (c *Controller) playLocked(path string) bool {
	if _, err := os.Stat(path); err != nil {
		slog.Error("player: file not found", "path", path)
		return false
	}

	if c.runningLocked() {
		c.stopLocked()
	}

	var audioDevice string
	if c.audioInHeadless {
		audioDevice = DetectHDMIAudio()
		if audioDevice != "" {
			slog.Debug("player: using audio device", "device", audioDevice)
		}
	}

	args := BuildArgs(LaunchConfig{
		SocketPath:    c.launcher.SocketPath(),
		Volume:        c.volume,
		HDMIOutput:    c.hdmiOutput,
		HardwareAccel: c.hardwareAccel,
		AudioDevice:   audioDevice,
	}, path)

	// Never launch against a leftover socket; its existence is how
	// readiness is detected.
	c.launcher.CleanupSocket()

	slog.Info("player: starting playback", "file", filepath.Base(path))
	proc, err := c.launcher.Launch(args)
	if err != nil {
		slog.Error("player: failed to start mpv", "err", err)
		c.teardownLocked()
		c.state = models.StateError
		return false
	}
	c.proc = proc

	if !c.launcher.AwaitSocket() {
		slog.Error("player: mpv socket not created")
		c.teardownLocked()
		return false
	}

	c.state = models.StatePlaying
	c.currentFile = filepath.Base(path)

	// Let playback initialize before asking for the duration
	time.Sleep(c.playSettle)
	c.duration = 0
	if v, ok := c.ipc.GetProperty("duration"); ok {
		if f, isNum := toFloat(v); isNum {
			c.duration = f
		}
	}

	slog.Info("player: playback started", "file", c.currentFile, "duration", c.duration)
	return true
}

// Pause toggles the pause flag, flipping the cached state to match.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningLocked() {
		slog.Warn("player: cannot pause, not running")
		return false
	}

	paused := false
	if v, ok := c.ipc.GetProperty("pause"); ok {
		if b, isBool := v.(bool); isBool {
			paused = b
		}
	}

	if !c.ipc.SetProperty("pause", !paused) {
		return false
	}

	if paused {
		c.state = models.StatePlaying
		slog.Info("player: playback resumed")
	} else {
		c.state = models.StatePaused
		slog.Info("player: playback paused")
	}
	return true
}

// Resume force-clears the pause flag.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningLocked() {
		slog.Warn("player: cannot resume, not running")
		return false
	}

	if !c.ipc.SetProperty("pause", false) {
		return false
	}
	c.state = models.StatePlaying
	slog.Info("player: playback resumed")
	return true
}

// Stop tears down the player and resets playback state. Idempotent;
// stopping an already-stopped player still returns true.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return true
}

func (c *Controller) stopLocked() {
	c.teardownLocked()
	c.state = models.StateStopped
	c.currentFile = ""
	c.position = 0
	c.duration = 0
	slog.Info("player: playback stopped")
}

// teardownLocked terminates any live process and removes the socket.
func (c *Controller) teardownLocked() {
	if c.proc != nil {
		c.proc.Terminate()
		c.proc = nil
	}
	c.launcher.CleanupSocket()
}

// Skip seeks relative to the current position (negative for backward).
func (c *Controller) Skip(seconds float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningLocked() {
		slog.Warn("player: cannot skip, not running")
		return false
	}
	if !c.seekLocked(seconds, "relative") {
		return false
	}
	slog.Info("player: skipped", "seconds", seconds)
	return true
}

// Seek jumps to an absolute position in seconds.
func (c *Controller) Seek(position float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningLocked() {
		slog.Warn("player: cannot seek, not running")
		return false
	}
	if !c.seekLocked(position, "absolute") {
		return false
	}
	slog.Info("player: seeked", "position", position)
	return true
}

func (c *Controller) seekLocked(amount float64, mode string) bool {
	if !c.ipc.Send("seek", amount, mode).OK() {
		return false
	}
	// Relative and absolute seeks both leave the audio output drifted on
	// the Pi; reloading the AO resyncs it. Best-effort, result ignored.
	time.Sleep(c.seekSettle)
	c.ipc.Send("ao-reload")
	return true
}

// SetVolume sets the volume property and caches the level on success.
// Range enforcement is the API layer's job; any integer is forwarded.
func (c *Controller) SetVolume(level int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runningLocked() {
		slog.Warn("player: cannot set volume, not running")
		return false
	}
	if !c.ipc.SetProperty("volume", level) {
		return false
	}
	c.volume = level
	slog.Info("player: volume set", "level", level)
	return true
}

// SetHDMIOutput records the connector selector for the next launch. If
// something is playing, playback restarts on the new output and re-seeks
// to the captured position.
func (c *Controller) SetHDMIOutput(output string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hdmiOutput = output

	if c.runningLocked() && c.currentFile != "" {
		pos := c.position
		path := filepath.Join(c.mediaDir, c.currentFile)

		c.stopLocked()
		ok := c.playLocked(path)
		if ok && pos > 0 {
			c.seekLocked(pos, "absolute")
		}
		return ok
	}

	slog.Info("player: hdmi output set", "output", output)
	return true
}

// IsRunning polls the process for liveness. A dead process triggers full
// teardown and forces the state to Stopped.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningLocked()
}

func (c *Controller) runningLocked() bool {
	if c.proc == nil {
		return false
	}
	if !c.proc.Alive() {
		slog.Info("player: process exited", "pid", c.proc.Pid())
		c.teardownLocked()
		c.state = models.StateStopped
		return false
	}
	return true
}

// Status returns a snapshot of the playback state. While the player is
// running, position and pause flag are refreshed from live properties;
// a failed poll (or one skipped by the rate limiter) serves the cache.
func (c *Controller) Status() models.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := models.Status{
		State:       c.state,
		CurrentFile: c.currentFile,
		Position:    0,
		Duration:    c.duration,
		Volume:      c.volume,
		IsPaused:    false,
	}

	if !c.runningLocked() {
		st.State = c.state // teardown above may have forced Stopped
		return st
	}

	st.Position = c.position
	st.IsPaused = c.state == models.StatePaused

	if !c.poll.Allow() {
		return st
	}

	if v, ok := c.ipc.GetProperty("time-pos"); ok {
		if f, isNum := toFloat(v); isNum {
			c.position = f
			st.Position = f
		}
	}
	if v, ok := c.ipc.GetProperty("pause"); ok {
		if paused, isBool := v.(bool); isBool {
			st.IsPaused = paused
			if paused {
				c.state = models.StatePaused
			} else {
				c.state = models.StatePlaying
			}
			st.State = c.state
		}
	}
	return st
}

// Close tears down any live process and cleans the socket. Called once
// at daemon shutdown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.state = models.StateStopped
}

// toFloat normalizes JSON-decoded numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

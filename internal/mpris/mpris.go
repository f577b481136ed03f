// Package mpris exposes the player on the D-Bus session bus using the
// MPRIS MediaPlayer2 interface, so desktop remotes and tools like
// playerctl can drive playback alongside the HTTP API.
package mpris

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

const (
	busName     = "org.mpris.MediaPlayer2.headless_mpv"
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	propsIface  = "org.freedesktop.DBus.Properties"
)

// Player is the subset of playback control MPRIS needs.
type Player interface {
	Pause() bool
	Resume() bool
	Stop() bool
	Skip(seconds float64) bool
	Status() models.Status
}

// Adapter owns the session-bus connection and the exported objects.
type Adapter struct {
	player Player
	conn   *dbus.Conn
}

// New creates an MPRIS adapter for the given player.
func New(player Player) *Adapter {
	return &Adapter{player: player}
}

// Start connects to the session bus, claims the MPRIS well-known name and
// blocks until ctx is cancelled. Headless boxes often run without a
// session bus; callers should treat an error here as non-fatal.
func (a *Adapter) Start(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("mpris: session bus: %w", err)
	}
	a.conn = conn

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mpris: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("mpris: name %s already taken", busName)
	}

	h := &handler{player: a.player}
	if err := conn.Export(h, objectPath, playerIface); err != nil {
		conn.Close()
		return fmt.Errorf("mpris: export player: %w", err)
	}
	if err := conn.Export(h, objectPath, rootIface); err != nil {
		conn.Close()
		return fmt.Errorf("mpris: export root: %w", err)
	}
	if err := conn.Export(h, objectPath, propsIface); err != nil {
		conn.Close()
		return fmt.Errorf("mpris: export properties: %w", err)
	}
	_ = conn.Export(introspect.Introspectable(introspectXML), objectPath,
		"org.freedesktop.DBus.Introspectable")

	slog.Info("mpris: registered on session bus", "name", busName)

	<-ctx.Done()

	_, _ = conn.ReleaseName(busName)
	conn.Close()
	slog.Info("mpris: unregistered")
	return nil
}

// handler implements the MPRIS method and property surface.
type handler struct {
	player Player
}

// --- org.mpris.MediaPlayer2.Player methods ---

func (h *handler) PlayPause() *dbus.Error {
	st := h.player.Status()
	if st.State == models.StatePlaying && !st.IsPaused {
		h.player.Pause()
	} else {
		h.player.Resume()
	}
	return nil
}

func (h *handler) Play() *dbus.Error {
	h.player.Resume()
	return nil
}

func (h *handler) Pause() *dbus.Error {
	st := h.player.Status()
	if !st.IsPaused {
		h.player.Pause()
	}
	return nil
}

func (h *handler) Stop() *dbus.Error {
	h.player.Stop()
	return nil
}

// Seek moves playback by offset microseconds, per the MPRIS contract.
func (h *handler) Seek(offset int64) *dbus.Error {
	h.player.Skip(float64(offset) / 1e6)
	return nil
}

// Next and Previous are part of the interface but the player has no
// playlist concept; they are accepted and ignored.
func (h *handler) Next() *dbus.Error     { return nil }
func (h *handler) Previous() *dbus.Error { return nil }

// --- org.mpris.MediaPlayer2 methods ---

func (h *handler) Raise() *dbus.Error { return nil }

func (h *handler) Quit() *dbus.Error {
	h.player.Stop()
	return nil
}

// --- org.freedesktop.DBus.Properties ---

func (h *handler) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	props := h.properties(iface)
	if props == nil {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown interface %s", iface))
	}
	v, ok := props[prop]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property %s.%s", iface, prop))
	}
	return v, nil
}

func (h *handler) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	props := h.properties(iface)
	if props == nil {
		return nil, dbus.MakeFailedError(fmt.Errorf("unknown interface %s", iface))
	}
	return props, nil
}

func (h *handler) Set(iface, prop string, value dbus.Variant) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("property %s.%s is read-only", iface, prop))
}

func (h *handler) properties(iface string) map[string]dbus.Variant {
	switch iface {
	case rootIface:
		return map[string]dbus.Variant{
			"CanQuit":             dbus.MakeVariant(true),
			"CanRaise":            dbus.MakeVariant(false),
			"HasTrackList":        dbus.MakeVariant(false),
			"Identity":            dbus.MakeVariant("headless-mpv"),
			"SupportedUriSchemes": dbus.MakeVariant([]string{}),
			"SupportedMimeTypes":  dbus.MakeVariant([]string{}),
		}
	case playerIface:
		st := h.player.Status()
		return map[string]dbus.Variant{
			"PlaybackStatus": dbus.MakeVariant(playbackStatus(st)),
			"Metadata":       dbus.MakeVariant(metadata(st)),
			"Position":       dbus.MakeVariant(int64(st.Position * 1e6)),
			"Volume":         dbus.MakeVariant(float64(st.Volume) / 100.0),
			"CanGoNext":      dbus.MakeVariant(false),
			"CanGoPrevious":  dbus.MakeVariant(false),
			"CanPlay":        dbus.MakeVariant(true),
			"CanPause":       dbus.MakeVariant(true),
			"CanSeek":        dbus.MakeVariant(true),
			"CanControl":     dbus.MakeVariant(true),
		}
	}
	return nil
}

// playbackStatus maps the internal state to the MPRIS PlaybackStatus enum.
func playbackStatus(st models.Status) string {
	switch {
	case st.State == models.StatePlaying && st.IsPaused:
		return "Paused"
	case st.State == models.StatePlaying:
		return "Playing"
	case st.State == models.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func metadata(st models.Status) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/io/headless_mpv/track/0")),
	}
	if st.CurrentFile != "" {
		md["xesam:title"] = dbus.MakeVariant(st.CurrentFile)
	}
	if st.Duration > 0 {
		md["mpris:length"] = dbus.MakeVariant(int64(st.Duration * 1e6))
	}
	return md
}

const introspectXML = `
<node>
  <interface name="org.mpris.MediaPlayer2">
    <method name="Raise"/>
    <method name="Quit"/>
    <property name="CanQuit" type="b" access="read"/>
    <property name="CanRaise" type="b" access="read"/>
    <property name="HasTrackList" type="b" access="read"/>
    <property name="Identity" type="s" access="read"/>
    <property name="SupportedUriSchemes" type="as" access="read"/>
    <property name="SupportedMimeTypes" type="as" access="read"/>
  </interface>
  <interface name="org.mpris.MediaPlayer2.Player">
    <method name="Next"/>
    <method name="Previous"/>
    <method name="Pause"/>
    <method name="PlayPause"/>
    <method name="Stop"/>
    <method name="Play"/>
    <method name="Seek">
      <arg name="Offset" type="x" direction="in"/>
    </method>
    <property name="PlaybackStatus" type="s" access="read"/>
    <property name="Metadata" type="a{sv}" access="read"/>
    <property name="Position" type="x" access="read"/>
    <property name="Volume" type="d" access="read"/>
    <property name="CanGoNext" type="b" access="read"/>
    <property name="CanGoPrevious" type="b" access="read"/>
    <property name="CanPlay" type="b" access="read"/>
    <property name="CanPause" type="b" access="read"/>
    <property name="CanSeek" type="b" access="read"/>
    <property name="CanControl" type="b" access="read"/>
  </interface>
  <interface name="org.freedesktop.DBus.Properties">
    <method name="Get">
      <arg name="interface_name" type="s" direction="in"/>
      <arg name="property_name" type="s" direction="in"/>
      <arg name="value" type="v" direction="out"/>
    </method>
    <method name="GetAll">
      <arg name="interface_name" type="s" direction="in"/>
      <arg name="properties" type="a{sv}" direction="out"/>
    </method>
    <method name="Set">
      <arg name="interface_name" type="s" direction="in"/>
      <arg name="property_name" type="s" direction="in"/>
      <arg name="value" type="v" direction="in"/>
    </method>
  </interface>
</node>`

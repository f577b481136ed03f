// Package api implements the HTTP REST API for the headless-mpv daemon.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/keep-on-walking/headless-mpv/internal/config"
	"github.com/keep-on-walking/headless-mpv/internal/library"
	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	player Player
	lib    *library.Library
	events EventBus

	// cfg is the live configuration; cfgMu guards it across config
	// updates and the volume/hdmi handlers that persist their values.
	cfgMu sync.Mutex
	cfg   *config.Config
	store config.Store
}

// Player is the interface the handlers use to drive playback. It is the
// entire contract the HTTP layer binds to; the player package's
// Controller satisfies it.
type Player interface {
	Play(path string) bool
	Pause() bool
	Resume() bool
	Stop() bool
	Skip(seconds float64) bool
	Seek(position float64) bool
	SetVolume(level int) bool
	SetHDMIOutput(output string) bool
	IsRunning() bool
	Status() models.Status
}

// EventBus is the interface for distributing status change events.
type EventBus interface {
	Subscribe(id string) <-chan models.Status
	Unsubscribe(id string)
	Publish(status models.Status)
}

// publishStatus pushes a fresh snapshot to SSE subscribers after a
// successful mutating operation.
func (h *Handlers) publishStatus() {
	h.events.Publish(h.player.Status())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// writeResult writes the generic {"success": bool} body.
func writeResult(w http.ResponseWriter, success bool) {
	writeJSON(w, http.StatusOK, models.Result{Success: success})
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/keep-on-walking/headless-mpv/internal/identity"
	"github.com/keep-on-walking/headless-mpv/internal/models"
)

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Status())
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	disk, err := h.lib.DiskSpace()
	if err != nil {
		slog.Error("api: disk space query failed", "err", err)
	}

	writeJSON(w, http.StatusOK, models.Health{
		Status:     "healthy",
		Version:    identity.GetVersion(),
		Timestamp:  time.Now().Format(time.RFC3339),
		MPVRunning: h.player.IsRunning(),
		MediaDir:   h.lib.Dir(),
		DiskSpace:  disk,
	})
}

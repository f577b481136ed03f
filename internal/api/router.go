package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/keep-on-walking/headless-mpv/internal/config"
	"github.com/keep-on-walking/headless-mpv/internal/library"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(player Player, lib *library.Library, cfg *config.Config, store config.Store, bus EventBus) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{player: player, lib: lib, cfg: cfg, store: store, events: bus}

	// Playback control
	r.Post("/api/play", h.play)
	r.Post("/api/pause", h.pause)
	r.Post("/api/stop", h.stop)
	r.Post("/api/skip", h.skip)
	r.Post("/api/seek", h.seek)
	r.Post("/api/volume", h.volume)
	r.Post("/api/hdmi", h.hdmi)

	// Status & info
	r.Get("/api/status", h.status)
	r.Get("/api/health", h.health)

	// File management
	r.Get("/api/files", h.listFiles)
	r.Post("/api/upload", h.upload)
	r.Delete("/api/files/{filename}", h.deleteFile)

	// Configuration
	r.Get("/api/config", h.getConfig)
	r.Post("/api/config", h.updateConfig)

	// SSE
	r.Get("/api/subscribe", h.sseEvents)

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

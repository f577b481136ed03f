// Command headless-mpv is a daemon that drives an mpv process on a
// headless Raspberry Pi, exposing playback control over an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/keep-on-walking/headless-mpv/internal/api"
	"github.com/keep-on-walking/headless-mpv/internal/config"
	"github.com/keep-on-walking/headless-mpv/internal/events"
	"github.com/keep-on-walking/headless-mpv/internal/identity"
	"github.com/keep-on-walking/headless-mpv/internal/library"
	"github.com/keep-on-walking/headless-mpv/internal/maintenance"
	"github.com/keep-on-walking/headless-mpv/internal/mpris"
	"github.com/keep-on-walking/headless-mpv/internal/player"
	"github.com/keep-on-walking/headless-mpv/internal/zeroconf"
)

func main() {
	var (
		addr     = flag.String("addr", "", "HTTP listen address (default: :<config port>)")
		cfgDir   = flag.String("config-dir", "", "config directory (default: ~/.config/headless-mpv)")
		mediaDir = flag.String("media-dir", "", "media directory (overrides config)")
		mpvBin   = flag.String("mpv", "mpv", "mpv binary to launch")
		socket   = flag.String("socket", player.DefaultSocketPath, "mpv IPC socket path")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Resolve config directory
	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "headless-mpv")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	// Config store
	store := config.NewJSONStore(filepath.Join(*cfgDir, "config.json"))
	cfg, err := store.Load()
	if err != nil {
		slog.Error("cannot load config", "err", err)
		os.Exit(1)
	}
	if *mediaDir != "" {
		cfg.MediaDir = *mediaDir
	}

	// Configure logging. --debug wins over the configured level.
	logLevel := parseLogLevel(cfg.LogLevel)
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Media library
	lib, err := library.New(cfg.MediaDir)
	if err != nil {
		slog.Error("cannot open media library", "dir", cfg.MediaDir, "err", err)
		os.Exit(1)
	}
	defer lib.Close()

	// Player: supervisor launches mpv, client talks to its IPC socket
	launcher := player.NewSupervisor(*mpvBin, *socket)
	ipc := player.NewClient(*socket)
	ctrl := player.New(launcher, ipc, cfg)

	// Event bus for SSE status updates
	bus := events.NewBus()

	// Maintenance goroutines (online check, config backups)
	maint := maintenance.New(*cfgDir, func(online bool) {
		slog.Info("online status changed", "online", online)
	})
	go maint.Start(ctx)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%d", cfg.Port)
	}

	// Zeroconf mDNS registration
	zc := zeroconf.New(identity.GetHostname(), cfg.Port)
	go func() {
		if err := zc.Start(ctx); err != nil {
			slog.Warn("zeroconf failed", "err", err)
		}
	}()

	// MPRIS adapter. Best effort: headless boxes often have no session bus.
	mp := mpris.New(ctrl)
	go func() {
		if err := mp.Start(ctx); err != nil {
			slog.Warn("mpris unavailable", "err", err)
		}
	}()

	// HTTP server
	router := api.NewRouter(ctrl, lib, cfg, store, bus)

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("headless-mpv listening",
			"addr", listenAddr, "media", cfg.MediaDir, "config", *cfgDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()

	// Stop the player first so mpv is not orphaned
	ctrl.Close()

	// Flush pending config writes
	if err := store.Flush(); err != nil {
		slog.Warn("failed to flush config", "err", err)
	}

	// Graceful HTTP shutdown
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}

// parseLogLevel maps the config log_level string to a slog level.
func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package models defines the shared types for the headless-mpv daemon.
package models

// PlayerState describes what the player process is doing right now.
// Transitions happen only inside the player controller, driven by the
// public operations or by detecting process death.
type PlayerState string

const (
	StateStopped PlayerState = "stopped"
	StatePlaying PlayerState = "playing"
	StatePaused  PlayerState = "paused"
	StateError   PlayerState = "error"
)

// Status is a point-in-time snapshot of the player, as returned by
// GET /api/status. Position and IsPaused are refreshed from the live
// process when it is running; otherwise they report defaults.
type Status struct {
	State       PlayerState `json:"state"`
	CurrentFile string      `json:"current_file"`
	Position    float64     `json:"position"`
	Duration    float64     `json:"duration"`
	Volume      int         `json:"volume"`
	IsPaused    bool        `json:"is_paused"`
}

// MediaFile describes one entry in the media library listing.
type MediaFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// DiskSpace reports filesystem usage for the media directory.
type DiskSpace struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	PercentUsed float64 `json:"percent_used"`
}

// Health is the payload of GET /api/health.
type Health struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Timestamp  string    `json:"timestamp"`
	MPVRunning bool      `json:"mpv_running"`
	MediaDir   string    `json:"media_dir"`
	DiskSpace  DiskSpace `json:"disk_space"`
}

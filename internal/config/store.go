// Package config persists the daemon configuration as a JSON file.
package config

import (
	"os"
	"path/filepath"
)

// Config holds every user-tunable setting. It is persisted verbatim so the
// JSON keys form the public /api/config contract.
type Config struct {
	MediaDir        string `json:"media_dir"`
	MaxUploadSize   int64  `json:"max_upload_size"`
	Volume          int    `json:"volume"`
	Loop            bool   `json:"loop"`
	HardwareAccel   bool   `json:"hardware_accel"`
	HDMIOutput      string `json:"hdmi_output"`
	AudioInHeadless bool   `json:"audio_in_headless"`
	Port            int    `json:"port"`
	LogLevel        string `json:"log_level"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		MediaDir:        filepath.Join(home, "videos"),
		MaxUploadSize:   2 << 30, // 2GB
		Volume:          100,
		Loop:            false,
		HardwareAccel:   true,
		HDMIOutput:      "auto",
		AudioInHeadless: true,
		Port:            5000,
		LogLevel:        "INFO",
	}
}

// Store is the persistence interface for the daemon configuration.
// Save may be asynchronous; Flush forces pending writes to disk.
type Store interface {
	Load() (*Config, error)
	Save(cfg *Config) error
	Flush() error
}

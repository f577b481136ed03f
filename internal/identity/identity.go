// Package identity provides system identity information for the daemon.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// DefaultVersion is the fallback version string when metadata.json is not found.
const DefaultVersion = "1.0.0"

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "headless-mpv"
	}
	return h
}

// GetVersion reads the version from ~/.config/headless-mpv/metadata.json.
// Falls back to DefaultVersion if the file is missing or unreadable.
func GetVersion() string {
	return GetVersionFromDir("")
}

// GetVersionFromDir reads the version from a specific config directory.
// If dir is empty, uses the default ~/.config/headless-mpv path.
func GetVersionFromDir(dir string) string {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultVersion
		}
		dir = filepath.Join(home, ".config", "headless-mpv")
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return DefaultVersion
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return DefaultVersion
	}

	if v, ok := meta["version"].(string); ok && v != "" {
		return v
	}
	return DefaultVersion
}

// GetOnlineStatus reports whether the box has internet connectivity, as
// last recorded by the maintenance online checker. Returns false when no
// status file exists yet.
func GetOnlineStatus() bool {
	if data, err := os.ReadFile("/tmp/headless-mpv-online"); err == nil {
		return strings.TrimSpace(string(data)) == "online"
	}
	return false
}

package identity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keep-on-walking/headless-mpv/internal/identity"
)

func TestGetVersion_Fallback(t *testing.T) {
	dir := t.TempDir()
	got := identity.GetVersionFromDir(dir)
	if got != identity.DefaultVersion {
		t.Errorf("GetVersionFromDir(%q) = %q; want %q", dir, got, identity.DefaultVersion)
	}
}

func TestGetVersion_FromFile(t *testing.T) {
	dir := t.TempDir()
	want := "1.2.3"
	meta := map[string]interface{}{"version": want}
	data, _ := json.Marshal(meta)
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	got := identity.GetVersionFromDir(dir)
	if got != want {
		t.Errorf("GetVersionFromDir(%q) = %q; want %q", dir, got, want)
	}
}

func TestGetVersion_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	got := identity.GetVersionFromDir(dir)
	if got != identity.DefaultVersion {
		t.Errorf("GetVersionFromDir with invalid JSON = %q; want %q", got, identity.DefaultVersion)
	}
}

func TestGetOnlineStatus_Missing(t *testing.T) {
	// Best effort: skip if the status file happens to exist on this machine.
	if _, err := os.Stat("/tmp/headless-mpv-online"); err == nil {
		t.Skip("status file exists on this machine; skipping offline test")
	}

	if identity.GetOnlineStatus() {
		t.Error("GetOnlineStatus() = true; want false when no status file exists")
	}
}

func TestGetHostname(t *testing.T) {
	if identity.GetHostname() == "" {
		t.Error("GetHostname() returned empty string")
	}
}

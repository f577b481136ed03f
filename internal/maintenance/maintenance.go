// Package maintenance provides background upkeep goroutines for the
// player daemon: online status checking and daily configuration backups.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// dialFunc is a variable so tests can inject a mock dialer.
var dialFunc = func(network, address string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout(network, address, timeout)
}

const backupPrefix = "headless-mpv-config-"

// Service manages background maintenance goroutines.
type Service struct {
	configDir string
	backupDir string     // defaults to ~/backups when empty
	onOnline  func(bool) // callback when online status changes
}

// New creates a maintenance Service backing up configDir.
func New(configDir string, onOnline func(bool)) *Service {
	return &Service{
		configDir: configDir,
		onOnline:  onOnline,
	}
}

// Start launches all background maintenance goroutines.
// Blocks until ctx is cancelled; all goroutines respect the context.
func (s *Service) Start(ctx context.Context) {
	go s.runCheckOnline(ctx)
	go s.runBackup(ctx)

	<-ctx.Done()
}

// RunBackupNow performs a backup immediately and returns the backup file path.
func (s *Service) RunBackupNow() (string, error) {
	return runBackup(s.configDir, s.backupDir)
}

// ListBackups returns available backup files sorted by name (newest last).
func (s *Service) ListBackups() ([]string, error) {
	backupDir, err := resolveBackupDir(s.backupDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".tar.gz") {
			files = append(files, filepath.Join(backupDir, e.Name()))
		}
	}
	return files, nil
}

// runCheckOnline checks internet connectivity every 5 minutes.
func (s *Service) runCheckOnline(ctx context.Context) {
	lastStatus := false
	first := true

	check := func() {
		conn, err := dialFunc("tcp", "1.1.1.1:53", 3*time.Second)
		online := err == nil
		if conn != nil {
			conn.Close()
		}

		status := "offline"
		if online {
			status = "online"
		}
		if err2 := os.WriteFile("/tmp/headless-mpv-online", []byte(status), 0644); err2 != nil {
			slog.Warn("maintenance: failed to write online status", "err", err2)
		}

		// Fire callback only on change
		if first || online != lastStatus {
			first = false
			lastStatus = online
			if s.onOnline != nil {
				s.onOnline(online)
			}
			slog.Info("maintenance: online status", "online", online)
		}
	}

	check() // immediate first check

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// runBackup performs daily backups at 2am.
func (s *Service) runBackup(ctx context.Context) {
	for {
		now := time.Now()
		next2am := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
		if !next2am.After(now) {
			next2am = next2am.Add(24 * time.Hour)
		}
		delay := next2am.Sub(now)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			path, err := runBackup(s.configDir, s.backupDir)
			if err != nil {
				slog.Error("maintenance: backup failed", "err", err)
			} else {
				slog.Info("maintenance: backup created", "file", path)
			}
		}
	}
}

func resolveBackupDir(backupDir string) (string, error) {
	if backupDir != "" {
		return backupDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, "backups"), nil
}

// runBackup creates a timestamped tarball of the config directory.
func runBackup(configDir, backupDir string) (string, error) {
	backupDir, err := resolveBackupDir(backupDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	src := configDir
	if src == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		src = filepath.Join(home, ".config", "headless-mpv")
	}

	date := time.Now().Format("2006-01-02")
	destFile := filepath.Join(backupDir, fmt.Sprintf("%s%s.tar.gz", backupPrefix, date))

	cmd := exec.Command("tar", "-czf", destFile, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tar: %w: %s", err, out)
	}

	pruneOldBackups(backupDir, 90*24*time.Hour)

	return destFile, nil
}

// pruneOldBackups deletes backup files older than maxAge from backupDir.
func pruneOldBackups(backupDir string, maxAge time.Duration) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(backupDir, e.Name())
			if err := os.Remove(path); err != nil {
				slog.Warn("maintenance: failed to prune old backup", "file", path, "err", err)
			} else {
				slog.Info("maintenance: pruned old backup", "file", path)
			}
		}
	}
}

// Package library manages the media directory: listing, uploads,
// deletion, and safe resolution of play targets.
package library

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// allowedExtensions is the media file allow-list. Anything else is
// rejected at upload and resolution time.
var allowedExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpg": true, ".mpeg": true, ".3gp": true, ".ogv": true,
}

const uploadChunkSize = 64 * 1024

// Library serves the media directory. A fsnotify watcher invalidates the
// cached listing when files change outside the API (scp, samba, etc.).
type Library struct {
	dir string

	mu    sync.Mutex
	cache []models.MediaFile
	dirty bool

	watcher *fsnotify.Watcher
}

// New creates a Library rooted at dir, creating the directory if needed.
func New(dir string) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", abs, err)
	}

	l := &Library{dir: abs, dirty: true}

	// Watcher failure is not fatal; the cache just refreshes on writes
	// through the API only.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("library: could not create fsnotify watcher", "err", err)
		return l, nil
	}
	if err := watcher.Add(abs); err != nil {
		slog.Warn("library: could not watch media dir", "dir", abs, "err", err)
		watcher.Close()
		return l, nil
	}
	l.watcher = watcher
	go l.watchLoop()

	slog.Info("library: watching media directory", "dir", abs)
	return l, nil
}

// Dir returns the absolute media directory path.
func (l *Library) Dir() string { return l.dir }

// Close stops the directory watcher.
func (l *Library) Close() {
	if l.watcher != nil {
		l.watcher.Close()
	}
}

func (l *Library) watchLoop() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				l.mu.Lock()
				l.dirty = true
				l.mu.Unlock()
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("library: watcher error", "err", err)
		}
	}
}

// List returns the media files sorted by name. The listing is cached
// until the watcher reports a change.
func (l *Library) List() ([]models.MediaFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty && l.cache != nil {
		return l.cache, nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	files := []models.MediaFile{}
	for _, e := range entries {
		if e.IsDir() || !allowedExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, models.MediaFile{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	l.cache = files
	l.dirty = false
	return files, nil
}

// Resolve validates a client-supplied filename and returns its absolute
// path inside the media directory. The file need not exist.
func (l *Library) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	// Reject anything that isn't a bare file name
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return "", fmt.Errorf("file type %s not allowed", filepath.Ext(name))
	}

	full := filepath.Join(l.dir, name)
	// Belt and braces against traversal via weird names
	if !strings.HasPrefix(full, l.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}
	return full, nil
}

// SaveUpload streams r into the library under the given name, copying in
// chunks so large uploads never sit in memory. A partial file is removed
// on failure.
func (l *Library) SaveUpload(name string, r io.Reader) (models.MediaFile, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return models.MediaFile{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return models.MediaFile{}, err
	}

	if _, err := io.CopyBuffer(f, r, make([]byte, uploadChunkSize)); err != nil {
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("library: could not remove partial upload", "path", path, "err", rmErr)
		}
		return models.MediaFile{}, err
	}
	if err := f.Close(); err != nil {
		return models.MediaFile{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.MediaFile{}, err
	}

	l.invalidate()
	slog.Info("library: file uploaded", "name", name, "size", info.Size())
	return models.MediaFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		Modified: info.ModTime().Format(time.RFC3339),
	}, nil
}

// Delete removes a file from the library.
func (l *Library) Delete(name string) error {
	path, err := l.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	l.invalidate()
	slog.Info("library: file deleted", "name", name)
	return nil
}

func (l *Library) invalidate() {
	l.mu.Lock()
	l.dirty = true
	l.mu.Unlock()
}

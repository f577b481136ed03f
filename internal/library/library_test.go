package library_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keep-on-walking/headless-mpv/internal/library"
)

func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	l, err := library.New(t.TempDir())
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestListFiltersAndSorts(t *testing.T) {
	l := newTestLibrary(t)

	for _, name := range []string{"b.mp4", "a.mkv", "notes.txt", "z.exe"} {
		if err := os.WriteFile(filepath.Join(l.Dir(), name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(l.Dir(), "sub.mp4"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := l.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %+v, want a.mkv and b.mp4 only", files)
	}
	if files[0].Name != "a.mkv" || files[1].Name != "b.mp4" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
}

func TestListPicksUpExternalChanges(t *testing.T) {
	l := newTestLibrary(t)

	if _, err := l.List(); err != nil {
		t.Fatal(err)
	}

	// Simulate a file arriving outside the API (e.g. via scp)
	if err := os.WriteFile(filepath.Join(l.Dir(), "new.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// The watcher marks the cache dirty asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		files, err := l.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 1 && files[0].Name == "new.mp4" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("external file never appeared in the listing")
}

func TestResolveValidation(t *testing.T) {
	l := newTestLibrary(t)

	cases := []struct {
		name    string
		wantErr string
	}{
		{"movie.mp4", ""},
		{"MOVIE.MP4", ""},
		{"", "empty"},
		{"../etc/passwd.mp4", "invalid filename"},
		{"sub/movie.mp4", "invalid filename"},
		{"movie.txt", "not allowed"},
		{"movie", "not allowed"},
	}
	for _, tc := range cases {
		path, err := l.Resolve(tc.name)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("Resolve(%q) error: %v", tc.name, err)
			} else if filepath.Dir(path) != l.Dir() {
				t.Errorf("Resolve(%q) = %q, escaped media dir", tc.name, path)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("Resolve(%q) err = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestSaveUploadAndDelete(t *testing.T) {
	l := newTestLibrary(t)

	mf, err := l.SaveUpload("clip.webm", strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if mf.Name != "clip.webm" || mf.Size != 10 {
		t.Errorf("uploaded file = %+v", mf)
	}

	files, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name != "clip.webm" {
		t.Errorf("listing after upload = %+v", files)
	}

	if err := l.Delete("clip.webm"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	files, err = l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("listing after delete = %+v", files)
	}
}

func TestSaveUploadRejectsBadNames(t *testing.T) {
	l := newTestLibrary(t)

	if _, err := l.SaveUpload("../escape.mp4", strings.NewReader("x")); err == nil {
		t.Error("traversal name accepted")
	}
	if _, err := l.SaveUpload("script.sh", strings.NewReader("x")); err == nil {
		t.Error("disallowed extension accepted")
	}
}

func TestDeleteMissingFile(t *testing.T) {
	l := newTestLibrary(t)
	if err := l.Delete("ghost.mp4"); err == nil {
		t.Error("Delete of missing file returned nil")
	}
}

func TestDiskSpace(t *testing.T) {
	l := newTestLibrary(t)

	ds, err := l.DiskSpace()
	if err != nil {
		t.Fatalf("DiskSpace: %v", err)
	}
	if ds.Total == 0 {
		t.Error("total = 0")
	}
	if ds.Used+ds.Free > ds.Total {
		t.Errorf("used(%d) + free(%d) > total(%d)", ds.Used, ds.Free, ds.Total)
	}
	if ds.PercentUsed < 0 || ds.PercentUsed > 100 {
		t.Errorf("percent_used = %v", ds.PercentUsed)
	}
}

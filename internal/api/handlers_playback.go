package api

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// play starts playback of a library file, or resumes when no file is
// given (mirrors pressing play on a paused player).
func (h *Handlers) play(w http.ResponseWriter, r *http.Request) {
	var req models.PlayRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body means resume
	}

	if req.File == "" {
		ok := h.player.Resume()
		if ok {
			h.publishStatus()
		}
		writeResult(w, ok)
		return
	}

	path, err := h.lib.Resolve(req.File)
	if err != nil {
		writeError(w, models.ErrBadRequest(err.Error()))
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, models.ErrNotFound("file not found: "+req.File))
		return
	}

	ok := h.player.Play(path)
	if ok {
		h.publishStatus()
	}
	writeResult(w, ok)
}

// pause toggles pause/resume.
func (h *Handlers) pause(w http.ResponseWriter, r *http.Request) {
	ok := h.player.Pause()
	if ok {
		h.publishStatus()
	}
	writeResult(w, ok)
}

func (h *Handlers) stop(w http.ResponseWriter, r *http.Request) {
	ok := h.player.Stop()
	if ok {
		h.publishStatus()
	}
	writeResult(w, ok)
}

func (h *Handlers) skip(w http.ResponseWriter, r *http.Request) {
	var req models.SkipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seconds == nil {
		writeError(w, models.ErrBadRequest("missing 'seconds' parameter"))
		return
	}
	if appErr := validateSkipDuration(*req.Seconds); appErr != nil {
		writeError(w, appErr)
		return
	}

	ok := h.player.Skip(*req.Seconds)
	if ok {
		h.publishStatus()
	}
	writeResult(w, ok)
}

func (h *Handlers) seek(w http.ResponseWriter, r *http.Request) {
	var req models.SeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		writeError(w, models.ErrBadRequest("missing 'position' parameter"))
		return
	}
	if appErr := validateSeekPosition(*req.Position); appErr != nil {
		writeError(w, appErr)
		return
	}

	ok := h.player.Seek(*req.Position)
	if ok {
		h.publishStatus()
	}
	writeResult(w, ok)
}

// volume sets the playback volume and persists the level on success.
func (h *Handlers) volume(w http.ResponseWriter, r *http.Request) {
	var req models.VolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Level == nil {
		writeError(w, models.ErrBadRequest("missing 'level' parameter"))
		return
	}
	if appErr := validateVolume(*req.Level); appErr != nil {
		writeError(w, appErr)
		return
	}

	ok := h.player.SetVolume(*req.Level)
	if ok {
		h.cfgMu.Lock()
		h.cfg.Volume = *req.Level
		_ = h.store.Save(h.cfg)
		h.cfgMu.Unlock()
		h.publishStatus()
	}
	writeResult(w, ok)
}

// hdmi selects the HDMI connector and persists the choice on success.
func (h *Handlers) hdmi(w http.ResponseWriter, r *http.Request) {
	var req models.HDMIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Output == "" {
		writeError(w, models.ErrBadRequest("missing 'output' parameter"))
		return
	}
	if appErr := validateHDMIOutput(req.Output); appErr != nil {
		writeError(w, appErr)
		return
	}

	ok := h.player.SetHDMIOutput(req.Output)
	if ok {
		h.cfgMu.Lock()
		h.cfg.HDMIOutput = req.Output
		_ = h.store.Save(h.cfg)
		h.cfgMu.Unlock()
		h.publishStatus()
	}
	writeResult(w, ok)
}

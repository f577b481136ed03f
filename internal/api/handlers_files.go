package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

func (h *Handlers) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.lib.List()
	if err != nil {
		writeError(w, models.ErrInternal("could not list media files: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"files":   files,
	})
}

// upload receives a multipart file and streams it into the library.
// The request body is capped at the configured max upload size.
func (h *Handlers) upload(w http.ResponseWriter, r *http.Request) {
	h.cfgMu.Lock()
	maxSize := h.cfg.MaxUploadSize
	h.cfgMu.Unlock()

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, models.ErrPayloadTooLarge("file exceeds the upload size limit"))
			return
		}
		writeError(w, models.ErrBadRequest("no file provided"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, models.ErrBadRequest("no file selected"))
		return
	}

	mf, err := h.lib.SaveUpload(header.Filename, file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, models.ErrPayloadTooLarge("file exceeds the upload size limit"))
			return
		}
		writeError(w, models.ErrBadRequest(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"filename": mf.Name,
		"size":     mf.Size,
	})
}

func (h *Handlers) deleteFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if _, err := h.lib.Resolve(filename); err != nil {
		writeError(w, models.ErrBadRequest(err.Error()))
		return
	}

	// Stop playback first if this file is on screen right now
	if st := h.player.Status(); st.CurrentFile == filename {
		h.player.Stop()
		h.publishStatus()
	}

	if err := h.lib.Delete(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, models.ErrNotFound("file not found: "+filename))
			return
		}
		writeError(w, models.ErrInternal(err.Error()))
		return
	}
	writeResult(w, true)
}

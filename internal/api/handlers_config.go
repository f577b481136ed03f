package api

import (
	"encoding/json"
	"net/http"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// configPatch holds optional updates to the persisted configuration.
// Pointer fields distinguish "absent" from zero values.
type configPatch struct {
	MediaDir        *string `json:"media_dir"`
	MaxUploadSize   *int64  `json:"max_upload_size"`
	Volume          *int    `json:"volume"`
	Loop            *bool   `json:"loop"`
	HardwareAccel   *bool   `json:"hardware_accel"`
	HDMIOutput      *string `json:"hdmi_output"`
	AudioInHeadless *bool   `json:"audio_in_headless"`
	Port            *int    `json:"port"`
	LogLevel        *string `json:"log_level"`
}

func (h *Handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	h.cfgMu.Lock()
	cfg := *h.cfg
	h.cfgMu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

// updateConfig validates and persists configuration changes. Settings
// that feed the running player (media_dir, hardware_accel, port, ...)
// take effect on the next daemon start; volume and hdmi_output are also
// applied live through their dedicated endpoints.
func (h *Handlers) updateConfig(w http.ResponseWriter, r *http.Request) {
	var patch configPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, models.ErrBadRequest("no configuration data provided"))
		return
	}

	if patch.Volume != nil {
		if appErr := validateVolume(*patch.Volume); appErr != nil {
			writeError(w, appErr)
			return
		}
	}
	if patch.HDMIOutput != nil {
		if appErr := validateHDMIOutput(*patch.HDMIOutput); appErr != nil {
			writeError(w, appErr)
			return
		}
	}

	h.cfgMu.Lock()
	if patch.MediaDir != nil {
		h.cfg.MediaDir = *patch.MediaDir
	}
	if patch.MaxUploadSize != nil {
		h.cfg.MaxUploadSize = *patch.MaxUploadSize
	}
	if patch.Volume != nil {
		h.cfg.Volume = *patch.Volume
	}
	if patch.Loop != nil {
		h.cfg.Loop = *patch.Loop
	}
	if patch.HardwareAccel != nil {
		h.cfg.HardwareAccel = *patch.HardwareAccel
	}
	if patch.HDMIOutput != nil {
		h.cfg.HDMIOutput = *patch.HDMIOutput
	}
	if patch.AudioInHeadless != nil {
		h.cfg.AudioInHeadless = *patch.AudioInHeadless
	}
	if patch.Port != nil {
		h.cfg.Port = *patch.Port
	}
	if patch.LogLevel != nil {
		h.cfg.LogLevel = *patch.LogLevel
	}
	_ = h.store.Save(h.cfg)
	cfg := *h.cfg
	h.cfgMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  cfg,
	})
}

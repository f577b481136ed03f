package api

import (
	"fmt"

	"github.com/keep-on-walking/headless-mpv/internal/models"
)

// Input bounds. The player controller forwards whatever it is given;
// enforcement lives here at the HTTP boundary.
const (
	volumeMin = 0
	volumeMax = 150 // mpv allows boosting above 100
	seekMin   = 0.0
	seekMax   = 86400.0 // 24 hours
	skipMin   = -3600.0
	skipMax   = 3600.0
)

// validHDMIOutputs are the connector selectors the Pi exposes.
var validHDMIOutputs = []string{"auto", "HDMI-A-1", "HDMI-A-2"}

func validateVolume(level int) *models.AppError {
	if level < volumeMin || level > volumeMax {
		return models.ErrBadRequest(fmt.Sprintf(
			"volume must be between %d and %d, got %d", volumeMin, volumeMax, level))
	}
	return nil
}

func validateSeekPosition(position float64) *models.AppError {
	if position < seekMin || position > seekMax {
		return models.ErrBadRequest(fmt.Sprintf(
			"seek position must be between %g and %g, got %g", seekMin, seekMax, position))
	}
	return nil
}

func validateSkipDuration(seconds float64) *models.AppError {
	if seconds < skipMin || seconds > skipMax {
		return models.ErrBadRequest(fmt.Sprintf(
			"skip duration must be between %g and %g, got %g", skipMin, skipMax, seconds))
	}
	return nil
}

func validateHDMIOutput(output string) *models.AppError {
	for _, v := range validHDMIOutputs {
		if output == v {
			return nil
		}
	}
	return models.ErrBadRequest(fmt.Sprintf(
		"invalid HDMI output %q, must be one of %v", output, validHDMIOutputs))
}

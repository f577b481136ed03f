package player

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const detectTimeout = 5 * time.Second

// listAudioDevices runs `aplay -L`. A variable so tests can inject canned
// output without ALSA present.
var listAudioDevices = func(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "aplay", "-L").Output()
	return string(out), err
}

// DetectHDMIAudio scans the ALSA device listing for an HDMI-capable
// output (the Pi exposes these as vc4hdmi devices) and returns its
// identifier prefixed with the alsa backend. Falls back to "alsa/default"
// when nothing matches and to "" when the listing itself fails; callers
// treat an empty result as "let mpv decide".
func DetectHDMIAudio() string {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	out, err := listAudioDevices(ctx)
	if err != nil {
		slog.Warn("player: could not detect HDMI audio", "err", err)
		return ""
	}

	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "vc4hdmi") && !strings.Contains(lower, "hdmi") {
			continue
		}
		// Indented lines are device descriptions, not names
		if strings.HasPrefix(line, "    ") {
			continue
		}
		device := strings.TrimSpace(line)
		if device != "" {
			return "alsa/" + device
		}
	}

	return "alsa/default"
}

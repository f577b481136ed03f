package player

import "fmt"

// LaunchConfig carries everything BuildArgs needs to assemble an mpv
// command line for one playback session.
type LaunchConfig struct {
	SocketPath    string
	Volume        int
	HDMIOutput    string // "auto" or a DRM connector name like "HDMI-A-1"
	HardwareAccel bool
	AudioDevice   string // resolved ALSA identifier, empty to omit
}

// BuildArgs assembles the ordered mpv argument list for the given media
// path. Pure construction; the supervisor decides when and how to spawn.
func BuildArgs(cfg LaunchConfig, path string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + cfg.SocketPath,
		"--idle=yes",
		"--force-window=no",
		"--keep-open=yes",
		fmt.Sprintf("--volume=%d", cfg.Volume),
	}

	// Video output: GPU via DRM, directly on the connector. An empty
	// connector string lets the backend pick one.
	connector := cfg.HDMIOutput
	if connector == "auto" {
		connector = ""
	}
	args = append(args,
		"--vo=gpu",
		"--gpu-context=drm",
		"--drm-connector="+connector,
	)

	if cfg.HardwareAccel {
		args = append(args,
			"--hwdec=auto",
			"--hwdec-codecs=all",
		)
	}

	if cfg.AudioDevice != "" {
		args = append(args, "--audio-device="+cfg.AudioDevice)
	}

	// Limited output levels and display-resampled sync keep 4K sources
	// watchable on the Pi.
	args = append(args,
		"--video-output-levels=limited",
		"--video-sync=display-resample",
	)

	return append(args, path)
}

package player

import (
	"context"
	"errors"
	"testing"
)

// withDeviceListing stubs the aplay runner for the duration of a test.
func withDeviceListing(t *testing.T, out string, err error) {
	t.Helper()
	orig := listAudioDevices
	listAudioDevices = func(context.Context) (string, error) { return out, err }
	t.Cleanup(func() { listAudioDevices = orig })
}

const piListing = `null
    Discard all samples (playback) or generate zero samples (capture)
default:CARD=vc4hdmi0
    vc4-hdmi-0, MAI PCM i2s-hifi-0
    Default Audio Device
sysdefault:CARD=vc4hdmi0
    vc4-hdmi-0, MAI PCM i2s-hifi-0
    Default Audio Device
`

func TestDetectHDMIAudioFindsPiDevice(t *testing.T) {
	withDeviceListing(t, piListing, nil)

	got := DetectHDMIAudio()
	if got != "alsa/default:CARD=vc4hdmi0" {
		t.Errorf("DetectHDMIAudio() = %q", got)
	}
}

func TestDetectHDMIAudioSkipsIndentedDescriptions(t *testing.T) {
	// Only the indented description mentions hdmi, no device name does
	listing := "default:CARD=Headphones\n    bcm2835 HDMI, something\n"
	withDeviceListing(t, listing, nil)

	if got := DetectHDMIAudio(); got != "alsa/default" {
		t.Errorf("DetectHDMIAudio() = %q, want fallback alsa/default", got)
	}
}

func TestDetectHDMIAudioFallbackWhenNoMatch(t *testing.T) {
	withDeviceListing(t, "default:CARD=Headphones\nnull\n", nil)

	if got := DetectHDMIAudio(); got != "alsa/default" {
		t.Errorf("DetectHDMIAudio() = %q, want alsa/default", got)
	}
}

func TestDetectHDMIAudioFailsSoft(t *testing.T) {
	withDeviceListing(t, "", errors.New("aplay: command not found"))

	if got := DetectHDMIAudio(); got != "" {
		t.Errorf("DetectHDMIAudio() = %q, want empty on failure", got)
	}
}

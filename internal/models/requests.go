package models

// PlayRequest starts playback of a library file. An empty File resumes
// paused playback instead.
type PlayRequest struct {
	File string `json:"file"`
}

// SkipRequest seeks relative to the current position.
type SkipRequest struct {
	Seconds *float64 `json:"seconds"`
}

// SeekRequest seeks to an absolute position.
type SeekRequest struct {
	Position *float64 `json:"position"`
}

// VolumeRequest sets the playback volume.
type VolumeRequest struct {
	Level *int `json:"level"`
}

// HDMIRequest selects the HDMI connector for video output.
type HDMIRequest struct {
	Output string `json:"output"`
}

// Result is the generic success/failure response body.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

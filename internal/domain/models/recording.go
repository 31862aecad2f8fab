package models

import "time"

// RecordingFile is one recorded clip as reported by the platform. The list for a
// camera/day is replaced wholesale on every fetch, never patched in place.
type RecordingFile struct {
	ID              string    `json:"id"`
	CameraID        string    `json:"camera_id"`
	CameraName      string    `json:"camera_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration"`
	FileSize        string    `json:"file_size"`
	URL             string    `json:"url"`
}

// RecordingSegment is one hourly timeline bucket. A well-formed day has exactly
// 24 of them, ordered by hour.
type RecordingSegment struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration"`
	HasRecording    bool   `json:"has_recording"`
}

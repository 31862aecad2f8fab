package models

import "time"

// DaySeconds is the playback offset ceiling: one day from 00:00:00.
const DaySeconds = 86400

// PlaybackSession is a read snapshot of the console's playback state. The session
// store owns the mutable original; everyone else gets copies of this.
type PlaybackSession struct {
	SelectedDate     time.Time          `json:"selected_date"`
	SelectedCameraID string             `json:"selected_camera_id"`
	CurrentTime      int                `json:"current_time"`
	IsPlaying        bool               `json:"is_playing"`
	Speed            float64            `json:"speed"`
	Recordings       []RecordingFile    `json:"recordings"`
	TimelineSegments []RecordingSegment `json:"timeline_segments"`
}

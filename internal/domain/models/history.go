package models

import "time"

// ViewEvent is one journaled act of watching: a stream bind or a playback
// selection on an operator console.
type ViewEvent struct {
	EventID   string    `json:"event_id" db:"event_id"`
	ConsoleID string    `json:"console_id" db:"console_id"`
	CameraID  string    `json:"camera_id" db:"camera_id"`
	Mode      string    `json:"mode" db:"mode"`
	ViewDate  time.Time `json:"view_date" db:"view_date"`
	Offset    int       `json:"offset_seconds" db:"offset_seconds"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// View modes recorded in the history journal.
const (
	ViewModeLive     = "live"
	ViewModeRecorded = "recorded"
)

// Package timeline maps a day of playback into 24 hourly buckets. It has no
// state and no I/O; callers may use it from any goroutine.
package timeline

import (
	"fmt"

	"github.com/boytur/cctv-viewer/internal/domain/models"
)

// HoursPerDay is the number of timeline buckets in a well-formed day.
const HoursPerDay = 24

// HourIndex returns the hour bucket for an offset in seconds from midnight,
// clamped to [0,23].
func HourIndex(offsetSeconds int) int {
	if offsetSeconds < 0 {
		return 0
	}

	hour := offsetSeconds / 3600
	if hour > HoursPerDay-1 {
		return HoursPerDay - 1
	}

	return hour
}

// OffsetForHour returns the second offset at which the given hour starts.
func OffsetForHour(hour int) int {
	return hour * 3600
}

// SegmentAt returns the bucket covering the offset. A day with fewer than 24
// buckets is malformed input from the platform; it reads as "no data" rather
// than an error.
func SegmentAt(segments []models.RecordingSegment, offsetSeconds int) (models.RecordingSegment, bool) {
	if len(segments) < HoursPerDay {
		return models.RecordingSegment{}, false
	}

	return segments[HourIndex(offsetSeconds)], true
}

// FormatOffset renders an offset as a wall clock, e.g. 30930 -> "08:35:30".
func FormatOffset(offsetSeconds int) string {
	if offsetSeconds < 0 {
		offsetSeconds = 0
	}
	if offsetSeconds > models.DaySeconds {
		offsetSeconds = models.DaySeconds
	}

	hours := offsetSeconds / 3600
	minutes := (offsetSeconds % 3600) / 60
	seconds := offsetSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

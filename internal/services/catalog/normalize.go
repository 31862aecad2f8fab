package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/boytur/cctv-viewer/internal/domain/models"
)

// The platform is inconsistent about field casing: some responses use
// camelCase, some snake_case. Each payload type is normalized in exactly one
// place here, preferring camelCase and defaulting to a safe zero value.

type fields map[string]json.RawMessage

func (f fields) str(camel, snake string) string {
	var s string
	if raw, ok := f[camel]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}
	if raw, ok := f[snake]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}

	return ""
}

func (f fields) num(camel, snake string) int {
	var n float64
	if raw, ok := f[camel]; ok && json.Unmarshal(raw, &n) == nil && n != 0 {
		return int(n)
	}
	if raw, ok := f[snake]; ok && json.Unmarshal(raw, &n) == nil {
		return int(n)
	}

	return 0
}

func (f fields) boolean(camel, snake string) bool {
	var b bool
	if raw, ok := f[camel]; ok && json.Unmarshal(raw, &b) == nil && b {
		return true
	}
	if raw, ok := f[snake]; ok && json.Unmarshal(raw, &b) == nil {
		return b
	}

	return false
}

func (f fields) timestamp(camel, snake string) time.Time {
	for _, key := range []string{camel, snake} {
		raw, ok := f[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

func decode(raw json.RawMessage) fields {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return fields{}
	}

	return f
}

func normalizeCamera(raw json.RawMessage) models.Camera {
	f := decode(raw)

	return models.Camera{
		ID:       f.str("id", "id"),
		Name:     f.str("name", "name"),
		Location: f.str("location", "location"),
		Online:   strings.EqualFold(f.str("status", "status"), "online"),
	}
}

func normalizeRecording(raw json.RawMessage, cameraID string) models.RecordingFile {
	f := decode(raw)

	rec := models.RecordingFile{
		ID:              f.str("id", "id"),
		CameraID:        f.str("cameraId", "camera_id"),
		CameraName:      f.str("cameraName", "camera_name"),
		StartTime:       f.timestamp("startTime", "start_time"),
		EndTime:         f.timestamp("endTime", "end_time"),
		DurationSeconds: f.num("duration", "duration"),
		FileSize:        f.str("fileSize", "file_size"),
		URL:             f.str("url", "url"),
	}

	if rec.CameraID == "" {
		rec.CameraID = cameraID
	}
	if rec.CameraName == "" {
		rec.CameraName = cameraID
	}
	if rec.EndTime.IsZero() && !rec.StartTime.IsZero() {
		rec.EndTime = rec.StartTime.Add(time.Duration(rec.DurationSeconds) * time.Second)
	}

	return rec
}

func normalizeSegment(raw json.RawMessage) models.RecordingSegment {
	f := decode(raw)

	return models.RecordingSegment{
		StartTime:       f.str("startTime", "start_time"),
		EndTime:         f.str("endTime", "end_time"),
		DurationMinutes: f.num("duration", "duration"),
		HasRecording:    f.boolean("hasRecording", "has_recording"),
	}
}

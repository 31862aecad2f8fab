package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCatalog_Recordings_fieldCasing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/recordings":
			if got := r.URL.Query().Get("date"); got != "2024-01-15" {
				t.Errorf("date query = %q, want 2024-01-15", got)
			}
			// one camelCase record, one snake_case record
			_, _ = w.Write([]byte(`[
				{"id":"r1","cameraId":"cam1","cameraName":"Gate","startTime":"2024-01-15T08:00:00Z","endTime":"2024-01-15T08:10:00Z","duration":600,"fileSize":"120 MB","url":"/videos/r1.mp4"},
				{"id":"r2","camera_id":"cam1","camera_name":"Gate","start_time":"2024-01-15T09:00:00Z","duration":300,"file_size":"60 MB","url":"/videos/r2.mp4"}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(testLogger(), srv.URL, time.Second)

	recs, err := c.Recordings(context.Background(), "cam1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Recordings: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(recs))
	}

	if recs[0].CameraID != "cam1" || recs[0].FileSize != "120 MB" {
		t.Errorf("camelCase record not normalized: %+v", recs[0])
	}
	if recs[1].CameraID != "cam1" || recs[1].FileSize != "60 MB" {
		t.Errorf("snake_case record not normalized: %+v", recs[1])
	}
	// end time derived from start + duration when the platform omits it
	want := time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)
	if !recs[1].EndTime.Equal(want) {
		t.Errorf("derived EndTime = %v, want %v", recs[1].EndTime, want)
	}
}

func TestCatalog_Recordings_missingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1"}]`))
	}))
	defer srv.Close()

	c := New(testLogger(), srv.URL, time.Second)

	recs, err := c.Recordings(context.Background(), "cam7", time.Now())
	if err != nil {
		t.Fatalf("Recordings: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recording, got %d", len(recs))
	}
	// missing camera fields fall back to the requested camera
	if recs[0].CameraID != "cam7" || recs[0].CameraName != "cam7" {
		t.Errorf("defaults not applied: %+v", recs[0])
	}
}

func TestCatalog_Timeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"startTime":"00:00","endTime":"01:00","duration":60,"hasRecording":true},
			{"start_time":"01:00","end_time":"02:00","duration":60,"has_recording":false}
		]`))
	}))
	defer srv.Close()

	c := New(testLogger(), srv.URL, time.Second)

	segs, err := c.Timeline(context.Background(), "cam1", time.Now())
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if !segs[0].HasRecording || segs[1].HasRecording {
		t.Errorf("presence flags not normalized: %+v", segs)
	}
}

func TestCatalog_Cameras_mergesActiveRecordings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cameras":
			_, _ = w.Write([]byte(`[
				{"id":"cam1","name":"Gate","location":"North","status":"online"},
				{"id":"cam2","name":"Lobby","location":"Main","status":"OFFLINE"}
			]`))
		case "/api/recordings/active":
			_, _ = w.Write([]byte(`[{"camera_id":"cam1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(testLogger(), srv.URL, time.Second)

	cams, err := c.Cameras(context.Background())
	if err != nil {
		t.Fatalf("Cameras: %v", err)
	}
	if len(cams) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cams))
	}

	if !cams[0].Online || !cams[0].Recording {
		t.Errorf("cam1 should be online and recording: %+v", cams[0])
	}
	if cams[1].Online || cams[1].Recording {
		t.Errorf("cam2 should be offline and idle: %+v", cams[1])
	}
	if cams[0].StreamURL != "/api/stream/cam1/hls" {
		t.Errorf("StreamURL = %q", cams[0].StreamURL)
	}
}

func TestCatalog_Cameras_activeFetchFailureLosesFlagsOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cameras":
			_, _ = w.Write([]byte(`[{"id":"cam1","name":"Gate","status":"online"}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(testLogger(), srv.URL, time.Second)

	cams, err := c.Cameras(context.Background())
	if err != nil {
		t.Fatalf("Cameras: %v", err)
	}
	if len(cams) != 1 || cams[0].Recording {
		t.Errorf("expected cam1 without recording flag, got %+v", cams)
	}
}

func TestCatalog_transportError(t *testing.T) {
	c := New(testLogger(), "http://127.0.0.1:1", 100*time.Millisecond)

	if _, err := c.Recordings(context.Background(), "cam1", time.Now()); err == nil {
		t.Error("expected transport error from Recordings")
	}
	if _, err := c.Timeline(context.Background(), "cam1", time.Now()); err == nil {
		t.Error("expected transport error from Timeline")
	}
}

package streamshandler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	streamshandler "github.com/boytur/cctv-viewer/internal/http-server/handlers/streams"
	"github.com/boytur/cctv-viewer/internal/services/playback"
)

type fakeResolver struct {
	ref models.StreamReference
	err error

	cameraIDs []string
}

func (f *fakeResolver) Resolve(ctx context.Context, cameraID string) (models.StreamReference, error) {
	f.cameraIDs = append(f.cameraIDs, cameraID)
	return f.ref, f.err
}

type fakeEngine struct {
	bindErr error
	status  playback.Status

	binds   []playback.BindOptions
	refs    []models.StreamReference
	unbinds int
}

func (f *fakeEngine) Bind(ctx context.Context, p playback.Player, ref models.StreamReference, opts playback.BindOptions) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.binds = append(f.binds, opts)
	f.refs = append(f.refs, ref)
	return nil
}

func (f *fakeEngine) Unbind() { f.unbinds++ }

func (f *fakeEngine) Status() playback.Status { return f.status }

type fakeSession struct {
	session models.PlaybackSession
	current models.RecordingFile
	hasCurr bool
}

func (f *fakeSession) CurrentRecording() (models.RecordingFile, bool) { return f.current, f.hasCurr }
func (f *fakeSession) Snapshot() models.PlaybackSession              { return f.session }

type fakeJournal struct {
	cameras []string
	modes   []string
}

func (f *fakeJournal) RecordView(cameraID, mode string, viewDate time.Time, offsetSeconds int) error {
	f.cameras = append(f.cameras, cameraID)
	f.modes = append(f.modes, mode)
	return nil
}

func newRouter(resolver *fakeResolver, engine *fakeEngine, session *fakeSession, journal *fakeJournal) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := streamshandler.New(log, resolver, engine, playback.NewScreenPlayer(), session, journal)

	r := chi.NewRouter()
	r.Get("/streams/status", h.Status)
	r.Post("/streams/unbind", h.Unbind)
	r.Post("/streams/{cameraID}/resolve", h.Resolve)
	r.Post("/session/bind", h.BindRecording)

	return r
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestResolveBindsLive(t *testing.T) {
	resolver := &fakeResolver{ref: models.StreamReference{URL: "/stream_hls/cam-1/index.m3u8", Ready: true}}
	engine := &fakeEngine{status: playback.Status{Bound: true, Strategy: "adaptive-library"}}
	session := &fakeSession{}
	journal := &fakeJournal{}

	router := newRouter(resolver, engine, session, journal)

	rec := do(t, router, http.MethodPost, "/streams/cam-1/resolve")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if len(resolver.cameraIDs) != 1 || resolver.cameraIDs[0] != "cam-1" {
		t.Errorf("resolved cameras = %v", resolver.cameraIDs)
	}
	if len(engine.binds) != 1 || !engine.binds[0].Live {
		t.Errorf("binds = %+v, want one live bind", engine.binds)
	}

	var resp struct {
		URL      string `json:"url"`
		Ready    bool   `json:"ready"`
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Ready || resp.Strategy != "adaptive-library" {
		t.Errorf("response = %+v", resp)
	}

	if len(journal.modes) != 1 || journal.modes[0] != models.ViewModeLive {
		t.Errorf("journal modes = %v", journal.modes)
	}
}

func TestResolveNotReadyReturnsAccepted(t *testing.T) {
	resolver := &fakeResolver{ref: models.StreamReference{URL: "/stream_hls/cam-1/index.m3u8", Ready: false}}
	engine := &fakeEngine{}

	router := newRouter(resolver, engine, &fakeSession{}, nil)

	rec := do(t, router, http.MethodPost, "/streams/cam-1/resolve")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	if len(engine.binds) != 0 {
		t.Errorf("engine bound an unready stream: %+v", engine.binds)
	}
}

func TestResolveUnavailable(t *testing.T) {
	resolver := &fakeResolver{err: errs.ErrStreamUnavailable}

	router := newRouter(resolver, &fakeEngine{}, &fakeSession{}, nil)

	rec := do(t, router, http.MethodPost, "/streams/cam-1/resolve")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestResolveUnsupportedFormat(t *testing.T) {
	resolver := &fakeResolver{ref: models.StreamReference{URL: "/stream/cam-1.bin", Ready: true}}
	engine := &fakeEngine{bindErr: errs.ErrUnsupportedFormat}

	router := newRouter(resolver, engine, &fakeSession{}, nil)

	rec := do(t, router, http.MethodPost, "/streams/cam-1/resolve")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestBindRecording(t *testing.T) {
	session := &fakeSession{
		hasCurr: true,
		current: models.RecordingFile{ID: "rec-1", CameraID: "cam-1", URL: "/recordings/rec-1.mp4"},
	}
	engine := &fakeEngine{status: playback.Status{Bound: true, Strategy: "progressive"}}
	journal := &fakeJournal{}

	router := newRouter(&fakeResolver{}, engine, session, journal)

	rec := do(t, router, http.MethodPost, "/session/bind")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if len(engine.binds) != 1 || engine.binds[0].Live {
		t.Errorf("binds = %+v, want one recorded bind", engine.binds)
	}
	if engine.refs[0].URL != "/recordings/rec-1.mp4" {
		t.Errorf("bound url = %q", engine.refs[0].URL)
	}
	if len(journal.modes) != 1 || journal.modes[0] != models.ViewModeRecorded {
		t.Errorf("journal modes = %v", journal.modes)
	}
}

func TestBindRecordingWithoutClips(t *testing.T) {
	router := newRouter(&fakeResolver{}, &fakeEngine{}, &fakeSession{}, nil)

	rec := do(t, router, http.MethodPost, "/session/bind")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestUnbindReleasesEngine(t *testing.T) {
	engine := &fakeEngine{}

	router := newRouter(&fakeResolver{}, engine, &fakeSession{}, nil)

	rec := do(t, router, http.MethodPost, "/streams/unbind")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.unbinds != 1 {
		t.Errorf("unbinds = %d, want 1", engine.unbinds)
	}
}

func TestStatusReportsEngineState(t *testing.T) {
	engine := &fakeEngine{status: playback.Status{Bound: true, Strategy: "native", Live: true}}

	router := newRouter(&fakeResolver{}, engine, &fakeSession{}, nil)

	rec := do(t, router, http.MethodGet, "/streams/status")

	var status playback.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !status.Bound || status.Strategy != "native" || !status.Live {
		t.Errorf("status = %+v", status)
	}
}

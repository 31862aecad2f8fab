package streams

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// streamStub serves the descriptor endpoint and a probe target whose HEAD
// starts answering 200 after readyAfter attempts. readyAfter < 0 means never.
type streamStub struct {
	descriptorStatus int
	ready            bool
	readyAfter       int32
	probes           atomic.Int32
}

func (s *streamStub) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/stream/cam1/hls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(s.descriptorStatus)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"url":   "/stream_hls/cam1/index.m3u8",
			"ready": s.ready,
		})
	})
	mux.HandleFunc("/stream_hls/cam1/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe used %s, want HEAD", r.Method)
		}
		n := s.probes.Add(1)
		if s.readyAfter >= 0 && n >= s.readyAfter {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

func TestResolver_readyImmediately(t *testing.T) {
	stub := &streamStub{descriptorStatus: http.StatusOK, ready: true, readyAfter: -1}
	srv := stub.server(t)
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, 500*time.Millisecond)

	ref, err := r.Resolve(context.Background(), "cam1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ref.Ready {
		t.Error("expected Ready=true without polling")
	}
	if n := stub.probes.Load(); n != 0 {
		t.Errorf("expected no probes for a ready stream, got %d", n)
	}
}

func TestResolver_becomesReadyAfterProbes(t *testing.T) {
	stub := &streamStub{descriptorStatus: http.StatusOK, ready: false, readyAfter: 3}
	srv := stub.server(t)
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, time.Second)

	ref, err := r.Resolve(context.Background(), "cam1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ref.Ready {
		t.Error("expected Ready=true after probe succeeded")
	}
	if n := stub.probes.Load(); n < 3 {
		t.Errorf("expected at least 3 probes, got %d", n)
	}
}

func TestResolver_pollDeadline(t *testing.T) {
	stub := &streamStub{descriptorStatus: http.StatusAccepted, ready: true, readyAfter: -1}
	srv := stub.server(t)
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, 100*time.Millisecond)

	ref, err := r.Resolve(context.Background(), "cam1")
	if err != nil {
		t.Fatalf("deadline must not be an error, got %v", err)
	}
	if ref.Ready {
		t.Error("expected Ready=false after the deadline")
	}
	if ref.URL == "" {
		t.Error("expected the URL to survive an unready resolution")
	}
}

func TestResolver_202OverridesReadyFlag(t *testing.T) {
	// 202 means still preparing even if the body says ready
	stub := &streamStub{descriptorStatus: http.StatusAccepted, ready: true, readyAfter: 1}
	srv := stub.server(t)
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, time.Second)

	ref, err := r.Resolve(context.Background(), "cam1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ref.Ready {
		t.Error("expected readiness via probing")
	}
	if n := stub.probes.Load(); n == 0 {
		t.Error("expected 202 to force polling")
	}
}

func TestResolver_descriptorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, 100*time.Millisecond)

	_, err := r.Resolve(context.Background(), "cam1")
	if !errors.Is(err, errs.ErrStreamUnavailable) {
		t.Errorf("expected ErrStreamUnavailable, got %v", err)
	}
}

func TestResolver_emptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ready": true})
	}))
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, 100*time.Millisecond)

	_, err := r.Resolve(context.Background(), "cam1")
	if !errors.Is(err, errs.ErrStreamUnavailable) {
		t.Errorf("expected ErrStreamUnavailable for a descriptor without url, got %v", err)
	}
}

func TestResolver_cancelledContextStopsPolling(t *testing.T) {
	stub := &streamStub{descriptorStatus: http.StatusOK, ready: false, readyAfter: -1}
	srv := stub.server(t)
	defer srv.Close()

	r := New(testLogger(), nil, srv.URL, 10*time.Millisecond, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	ref, err := r.Resolve(ctx, "cam1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.Ready {
		t.Error("expected Ready=false after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("poll outlived its caller: %v", elapsed)
	}
}

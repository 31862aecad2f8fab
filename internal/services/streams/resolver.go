// Package streams resolves a camera to a playable stream reference, waiting out
// the platform's stream preparation with a bounded readiness poll.
package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/metrics"
)

type Resolver struct {
	log          *slog.Logger
	client       *http.Client
	met          *metrics.Metrics
	address      string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func New(log *slog.Logger, met *metrics.Metrics, address string, pollInterval, pollTimeout time.Duration) *Resolver {
	return &Resolver{
		log:          log,
		client:       &http.Client{Timeout: pollInterval * 4},
		met:          met,
		address:      strings.TrimRight(address, "/"),
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// Resolve asks the platform for a playable stream for the camera. A stream that
// is still being prepared is polled with HEAD probes every pollInterval until it
// answers 200 or pollTimeout elapses; hitting the deadline is not an error, the
// caller gets Ready=false and decides whether to offer a retry.
//
// There is no cache: a camera reported not-ready can become ready any moment,
// and a stale URL would silently desync the console. Every call re-resolves.
func (r *Resolver) Resolve(ctx context.Context, cameraID string) (models.StreamReference, error) {
	const op = "streams.Resolve"

	log := r.log.With(
		slog.String("op", op),
		slog.String("camera_id", cameraID),
	)

	r.met.IncResolveAttempts()

	ref, err := r.describe(ctx, cameraID)
	if err != nil {
		log.Error("failed to fetch stream descriptor", sl.Err(err))

		return models.StreamReference{}, fmt.Errorf("%s: %w", op, errs.ErrStreamUnavailable)
	}

	if ref.URL == "" {
		log.Error("stream descriptor has no url")

		return models.StreamReference{}, fmt.Errorf("%s: %w", op, errs.ErrStreamUnavailable)
	}

	if ref.Ready {
		log.Info("stream ready", slog.String("url", ref.URL))

		return ref, nil
	}

	log.Info("stream not ready, polling", slog.String("url", ref.URL))

	if r.poll(ctx, ref.URL) {
		ref.Ready = true

		log.Info("stream became ready", slog.String("url", ref.URL))

		return ref, nil
	}

	r.met.IncResolveTimeouts()

	log.Warn("readiness poll deadline elapsed", slog.String("url", ref.URL))

	return ref, nil
}

func (r *Resolver) describe(ctx context.Context, cameraID string) (models.StreamReference, error) {
	u := fmt.Sprintf("%s/api/stream/%s/hls", r.address, cameraID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.StreamReference{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.StreamReference{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
	default:
		return models.StreamReference{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var ref models.StreamReference
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return models.StreamReference{}, err
	}

	// 202 means accepted but still preparing, whatever the body claims
	if resp.StatusCode == http.StatusAccepted {
		ref.Ready = false
	}

	return ref, nil
}

// poll probes the URL until it exists or the deadline passes. The interval is
// fixed, not exponential: stream preparation finishes within seconds or not at
// all, and the loop is bounded by pollTimeout either way.
func (r *Resolver) poll(ctx context.Context, streamURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if r.probe(ctx, streamURL) {
				return true
			}
		}
	}
}

// probe is a lightweight existence check: HEAD, no body transfer.
func (r *Resolver) probe(ctx context.Context, streamURL string) bool {
	if strings.HasPrefix(streamURL, "/") {
		streamURL = r.address + streamURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

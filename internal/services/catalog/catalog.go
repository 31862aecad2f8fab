// Package catalog is the read-side client for the recording platform: camera
// inventory, recorded clips and hourly timeline coverage.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
)

type Catalog struct {
	log     *slog.Logger
	client  *http.Client
	address string
}

func New(log *slog.Logger, address string, timeout time.Duration) *Catalog {
	return &Catalog{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		address: strings.TrimRight(address, "/"),
	}
}

// Cameras returns the platform inventory merged with the set of cameras that
// are currently recording. A failed inventory fetch is an error; a failed
// active-recordings fetch only loses the recording flags.
func (c *Catalog) Cameras(ctx context.Context) ([]models.Camera, error) {
	const op = "catalog.Cameras"

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "/api/cameras", nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recording := c.activeRecordings(ctx)

	cams := make([]models.Camera, 0, len(raw))
	for _, r := range raw {
		cam := normalizeCamera(r)
		cam.StreamURL = fmt.Sprintf("/api/stream/%s/hls", cam.ID)
		cam.Recording = recording[cam.ID]
		cams = append(cams, cam)
	}

	return cams, nil
}

// Recordings returns the recorded clips for a camera/day, oldest first as the
// platform serves them.
func (c *Catalog) Recordings(ctx context.Context, cameraID string, date time.Time) ([]models.RecordingFile, error) {
	const op = "catalog.Recordings"

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "/api/recordings", dayQuery(cameraID, date), &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recs := make([]models.RecordingFile, 0, len(raw))
	for _, r := range raw {
		recs = append(recs, normalizeRecording(r, cameraID))
	}

	return recs, nil
}

// Timeline returns the hourly presence buckets for a camera/day.
func (c *Catalog) Timeline(ctx context.Context, cameraID string, date time.Time) ([]models.RecordingSegment, error) {
	const op = "catalog.Timeline"

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "/api/timeline", dayQuery(cameraID, date), &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	segs := make([]models.RecordingSegment, 0, len(raw))
	for _, r := range raw {
		segs = append(segs, normalizeSegment(r))
	}

	return segs, nil
}

func (c *Catalog) activeRecordings(ctx context.Context) map[string]bool {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, "/api/recordings/active", nil, &raw); err != nil {
		c.log.Warn("failed to fetch active recordings", sl.Err(err))

		return nil
	}

	active := make(map[string]bool, len(raw))
	for _, r := range raw {
		var f fields
		if err := json.Unmarshal(r, &f); err != nil {
			continue
		}
		if id := f.str("cameraId", "camera_id"); id != "" {
			active[id] = true
		}
	}

	return active
}

func (c *Catalog) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.address + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func dayQuery(cameraID string, date time.Time) url.Values {
	q := url.Values{}
	q.Set("cameraId", cameraID)
	q.Set("date", date.Format(time.DateOnly))

	return q
}

// Package session owns the console's playback state. Every mutation goes
// through the command API here; the UI surfaces only read snapshots.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/metrics"
)

const reloadTimeout = 15 * time.Second

// Catalog is the read side the store reloads from on selection changes.
type Catalog interface {
	Recordings(ctx context.Context, cameraID string, date time.Time) ([]models.RecordingFile, error)
	Timeline(ctx context.Context, cameraID string, date time.Time) ([]models.RecordingSegment, error)
}

// Store is the single mutable owner of the playback session.
type Store struct {
	log     *slog.Logger
	met     *metrics.Metrics
	catalog Catalog

	mu         sync.Mutex
	session    models.PlaybackSession
	generation uint64
}

// New returns a store with today's date selected, no camera and empty lists.
func New(log *slog.Logger, met *metrics.Metrics, catalog Catalog) *Store {
	return &Store{
		log:     log,
		met:     met,
		catalog: catalog,
		session: models.PlaybackSession{
			SelectedDate: time.Now().Truncate(24 * time.Hour),
			Speed:        1,
		},
	}
}

// SelectDate replaces the selected date and reloads recordings and timeline
// for it. The lists currently shown stay visible until the reload lands.
func (s *Store) SelectDate(date time.Time) {
	s.mu.Lock()
	s.session.SelectedDate = date
	gen, cameraID := s.bumpGenerationLocked()
	s.mu.Unlock()

	s.startReload(gen, cameraID, date)
}

// SelectCamera replaces the selected camera and reloads recordings and
// timeline for it.
func (s *Store) SelectCamera(cameraID string) {
	s.mu.Lock()
	s.session.SelectedCameraID = cameraID
	gen, _ := s.bumpGenerationLocked()
	date := s.session.SelectedDate
	s.mu.Unlock()

	s.startReload(gen, cameraID, date)
}

// bumpGenerationLocked tags the selection change; an in-flight reload carrying
// an older tag will be discarded when it completes.
func (s *Store) bumpGenerationLocked() (uint64, string) {
	s.generation++

	return s.generation, s.session.SelectedCameraID
}

func (s *Store) startReload(gen uint64, cameraID string, date time.Time) {
	if cameraID == "" {
		return
	}

	go s.reload(gen, cameraID, date)
}

func (s *Store) reload(gen uint64, cameraID string, date time.Time) {
	const op = "session.reload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("camera_id", cameraID),
		slog.String("date", date.Format(time.DateOnly)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	recordings, err := s.catalog.Recordings(ctx, cameraID, date)
	if err != nil {
		log.Error("failed to fetch recordings", sl.Err(err))

		recordings = nil
	}

	segments, err := s.catalog.Timeline(ctx, cameraID, date)
	if err != nil {
		log.Error("failed to fetch timeline", sl.Err(err))

		segments = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.met.IncStaleReloads()

		log.Debug("discarding stale reload", slog.Uint64("generation", gen))

		return
	}

	// both lists are replaced together; a failed fetch yields empty, never a
	// mix of old and new
	s.session.Recordings = recordings
	s.session.TimelineSegments = segments

	log.Info("selection loaded",
		slog.Int("recordings", len(recordings)),
		slog.Int("segments", len(segments)),
	)
}

// SetCurrentTime moves the playhead without touching the play state.
func (s *Store) SetCurrentTime(offsetSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CurrentTime = clamp(offsetSeconds)
}

// SeekTo moves the playhead and resumes: seeking expresses intent to watch.
func (s *Store) SeekTo(offsetSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CurrentTime = clamp(offsetSeconds)
	s.session.IsPlaying = true
}

// SkipForward advances the playhead, stopping at the end of the day.
func (s *Store) SkipForward(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CurrentTime = clamp(s.session.CurrentTime + seconds)
}

// SkipBackward rewinds the playhead, stopping at midnight.
func (s *Store) SkipBackward(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.CurrentTime = clamp(s.session.CurrentTime - seconds)
}

// SetPlaying sets the play/pause flag.
func (s *Store) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.IsPlaying = playing
}

// SetSpeed sets the playback speed. The set is closed; anything outside
// {0.5, 1, 2} is rejected and the previous value kept.
func (s *Store) SetSpeed(speed float64) error {
	switch speed {
	case 0.5, 1, 2:
	default:
		return errs.ErrInvalidSpeed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Speed = speed

	return nil
}

// CurrentRecording returns the clip containing the playhead instant, the first
// loaded clip when none contains it, or false when nothing is loaded. Showing
// the nearest clip beats showing an empty player.
func (s *Store) CurrentRecording() (models.RecordingFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.session.Recordings) == 0 {
		return models.RecordingFile{}, false
	}

	d := s.session.SelectedDate
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	instant := midnight.Add(time.Duration(s.session.CurrentTime) * time.Second)

	for _, rec := range s.session.Recordings {
		end := rec.StartTime.Add(time.Duration(rec.DurationSeconds) * time.Second)
		if !instant.Before(rec.StartTime) && !instant.After(end) {
			return rec, true
		}
	}

	return s.session.Recordings[0], true
}

// Snapshot returns a copy of the session for readers.
func (s *Store) Snapshot() models.PlaybackSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.session
	snap.Recordings = append([]models.RecordingFile(nil), s.session.Recordings...)
	snap.TimelineSegments = append([]models.RecordingSegment(nil), s.session.TimelineSegments...)

	return snap
}

func clamp(offsetSeconds int) int {
	if offsetSeconds < 0 {
		return 0
	}
	if offsetSeconds > models.DaySeconds {
		return models.DaySeconds
	}

	return offsetSeconds
}

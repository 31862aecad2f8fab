// Package history journals what each operator console watched. CCTV
// deployments audit this; the platform does not, so the viewer keeps its own
// trail.
package history

import (
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v3"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
)

type HistoryService struct {
	log          *slog.Logger
	viewSaver    ViewSaver
	viewProvider ViewProvider
	consoleID    string
}

type ViewSaver interface {
	Save(event models.ViewEvent) error
}

type ViewProvider interface {
	Recent(limit int) ([]models.ViewEvent, error)
}

func New(log *slog.Logger, viewSaver ViewSaver, viewProvider ViewProvider, consoleID string) *HistoryService {
	return &HistoryService{
		log:          log,
		viewSaver:    viewSaver,
		viewProvider: viewProvider,
		consoleID:    consoleID,
	}
}

// RecordView journals one act of watching. Failures are reported but callers
// are expected not to fail user actions over them.
func (s *HistoryService) RecordView(cameraID, mode string, viewDate time.Time, offsetSeconds int) error {
	const op = "service.history.RecordView"

	log := s.log.With(
		slog.String("op", op),
		slog.String("camera_id", cameraID),
		slog.String("mode", mode),
	)

	event := models.ViewEvent{
		EventID:   shortuuid.New(),
		ConsoleID: s.consoleID,
		CameraID:  cameraID,
		Mode:      mode,
		ViewDate:  viewDate,
		Offset:    offsetSeconds,
		CreatedAt: time.Now(),
	}

	if err := s.viewSaver.Save(event); err != nil {
		log.Error("failed to journal view", sl.Err(err))

		return errs.ErrWriteToDB
	}

	log.Info("view journaled", slog.String("event_id", event.EventID))

	return nil
}

// Recent returns the newest journal entries, newest first.
func (s *HistoryService) Recent(limit int) ([]models.ViewEvent, error) {
	const op = "service.history.Recent"

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	events, err := s.viewProvider.Recent(limit)
	if err != nil {
		s.log.Error("failed to read view history", slog.String("op", op), sl.Err(err))

		return nil, err
	}

	return events, nil
}

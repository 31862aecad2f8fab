package sessionhandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/api/response"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/timeline"
)

type SessionHandler struct {
	log     *slog.Logger
	session Session
	journal Journal
}

// Session is the playback command API the console drives.
type Session interface {
	SelectDate(date time.Time)
	SelectCamera(cameraID string)
	SetCurrentTime(offsetSeconds int)
	SeekTo(offsetSeconds int)
	SkipForward(seconds int)
	SkipBackward(seconds int)
	SetPlaying(playing bool)
	SetSpeed(speed float64) error
	CurrentRecording() (models.RecordingFile, bool)
	Snapshot() models.PlaybackSession
}

// Journal records what the console watched. May be nil when the viewer runs
// without a database.
type Journal interface {
	RecordView(cameraID, mode string, viewDate time.Time, offsetSeconds int) error
}

func New(log *slog.Logger, session Session, journal Journal) *SessionHandler {
	return &SessionHandler{
		log:     log,
		session: session,
		journal: journal,
	}
}

type SelectRequest struct {
	CameraID string `json:"camera_id"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type SeekRequest struct {
	OffsetSeconds int `json:"offset_seconds"`
}

type SkipRequest struct {
	Seconds int `json:"seconds" validate:"required"`
}

type SpeedRequest struct {
	Speed float64 `json:"speed" validate:"required,oneof=0.5 1 2"`
}

type PlayingRequest struct {
	Playing *bool `json:"playing" validate:"required"`
}

// Snapshot is the session view the console renders from.
type Snapshot struct {
	models.PlaybackSession
	Clock            string                `json:"clock"`
	CurrentHour      int                   `json:"current_hour"`
	CurrentRecording *models.RecordingFile `json:"current_recording,omitempty"`
}

func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.Select"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SelectRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	if req.CameraID == "" && req.Date == "" {
		log.Error("empty selection")

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("camera_id or date is required", middleware.GetReqID(r.Context())))

		return
	}

	if req.Date != "" {
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			log.Error("invalid date", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date", middleware.GetReqID(r.Context())))

			return
		}

		h.session.SelectDate(date)
	}

	if req.CameraID != "" {
		h.session.SelectCamera(req.CameraID)
	}

	h.journalSelection(log)

	render.JSON(w, r, h.snapshot())
}

func (h *SessionHandler) Seek(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.Seek"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SeekRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	h.session.SeekTo(req.OffsetSeconds)

	render.JSON(w, r, h.snapshot())
}

func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.Skip"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SkipRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	if req.Seconds >= 0 {
		h.session.SkipForward(req.Seconds)
	} else {
		h.session.SkipBackward(-req.Seconds)
	}

	render.JSON(w, r, h.snapshot())
}

func (h *SessionHandler) Speed(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.Speed"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SpeedRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	if err := h.session.SetSpeed(req.Speed); err != nil {
		if errors.Is(err, errs.ErrInvalidSpeed) {
			log.Error("invalid speed", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(errs.ErrInvalidSpeed.Error(), middleware.GetReqID(r.Context())))

			return
		}

		log.Error("failed to set speed", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to set speed", middleware.GetReqID(r.Context())))

		return
	}

	render.JSON(w, r, h.snapshot())
}

func (h *SessionHandler) Playing(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.Playing"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req PlayingRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	h.session.SetPlaying(*req.Playing)

	render.JSON(w, r, h.snapshot())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.snapshot())
}

type TimelineResponse struct {
	Segments    []models.RecordingSegment `json:"segments"`
	CurrentHour int                       `json:"current_hour"`
}

func (h *SessionHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()

	render.JSON(w, r, TimelineResponse{
		Segments:    snap.TimelineSegments,
		CurrentHour: timeline.HourIndex(snap.CurrentTime),
	})
}

func (h *SessionHandler) snapshot() Snapshot {
	snap := Snapshot{
		PlaybackSession: h.session.Snapshot(),
	}

	snap.Clock = timeline.FormatOffset(snap.CurrentTime)
	snap.CurrentHour = timeline.HourIndex(snap.CurrentTime)

	if rec, ok := h.session.CurrentRecording(); ok {
		snap.CurrentRecording = &rec
	}

	return snap
}

func (h *SessionHandler) journalSelection(log *slog.Logger) {
	if h.journal == nil {
		return
	}

	snap := h.session.Snapshot()
	if snap.SelectedCameraID == "" {
		return
	}

	if err := h.journal.RecordView(snap.SelectedCameraID, models.ViewModeRecorded, snap.SelectedDate, snap.CurrentTime); err != nil {
		log.Warn("failed to journal selection", sl.Err(err))
	}
}

// decode reads and validates the JSON body, writing the error response itself.
// Returns false when the request was already answered.
func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	err := render.DecodeJSON(r.Body, req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Error("request body is empty")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request", ""))

			return false
		}

		log.Error("failed to decode request body", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request", middleware.GetReqID(r.Context())))

		return false
	}

	log.Info("request body decoded", slog.Any("request", req))

	if err := validator.New().Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)

		log.Error("invalid request", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))

		return false
	}

	return true
}

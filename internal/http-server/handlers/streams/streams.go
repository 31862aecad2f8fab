package streamshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/http-server/handlers"
	"github.com/boytur/cctv-viewer/internal/lib/api/response"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/services/playback"
)

type StreamHandler struct {
	log      *slog.Logger
	resolver Resolver
	engine   Engine
	player   playback.Player
	session  Session
	journal  Journal
}

type Resolver interface {
	Resolve(ctx context.Context, cameraID string) (models.StreamReference, error)
}

type Engine interface {
	Bind(ctx context.Context, p playback.Player, ref models.StreamReference, opts playback.BindOptions) error
	Unbind()
	Status() playback.Status
}

type Session interface {
	CurrentRecording() (models.RecordingFile, bool)
	Snapshot() models.PlaybackSession
}

type Journal interface {
	RecordView(cameraID, mode string, viewDate time.Time, offsetSeconds int) error
}

func New(log *slog.Logger, resolver Resolver, engine Engine, player playback.Player, session Session, journal Journal) *StreamHandler {
	return &StreamHandler{
		log:      log,
		resolver: resolver,
		engine:   engine,
		player:   player,
		session:  session,
		journal:  journal,
	}
}

type ResolveResponse struct {
	models.StreamReference
	Strategy string `json:"strategy,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Resolve turns a camera into a live binding on the console player. "Not ready
// yet" and "unavailable" are different answers: the first invites a retry.
func (h *StreamHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streams.Resolve"

	cameraID := chi.URLParam(r, "cameraID")

	log := h.log.With(
		slog.String("op", op),
		slog.String("camera_id", cameraID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if cameraID == "" {
		handlers.Error(w, r, http.StatusBadRequest, response.Error("camera id is required", middleware.GetReqID(r.Context())))

		return
	}

	ref, err := h.resolver.Resolve(r.Context(), cameraID)
	if err != nil {
		log.Error("resolution failed", sl.Err(err))

		handlers.Error(w, r, http.StatusBadGateway, response.Error("stream unavailable", middleware.GetReqID(r.Context())))

		return
	}

	if !ref.Ready {
		log.Warn("stream not ready", slog.String("url", ref.URL))

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, ResolveResponse{
			StreamReference: ref,
			Message:         "stream not ready yet",
		})

		return
	}

	if err := h.engine.Bind(r.Context(), h.player, ref, playback.BindOptions{Live: true}); err != nil {
		log.Error("bind failed", sl.Err(err))

		if errors.Is(err, errs.ErrUnsupportedFormat) {
			handlers.Error(w, r, http.StatusBadGateway, response.Error("stream unavailable", middleware.GetReqID(r.Context())))

			return
		}

		handlers.Error(w, r, http.StatusBadGateway, response.Error("stream error", middleware.GetReqID(r.Context())))

		return
	}

	h.journalView(log, cameraID, models.ViewModeLive)

	render.JSON(w, r, ResolveResponse{
		StreamReference: ref,
		Strategy:        h.engine.Status().Strategy,
	})
}

// BindRecording binds the session's current recording to the console player.
func (h *StreamHandler) BindRecording(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streams.BindRecording"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rec, ok := h.session.CurrentRecording()
	if !ok || rec.URL == "" {
		log.Warn("no recording to bind")

		handlers.Error(w, r, http.StatusNotFound, response.Error("no clips for this date", middleware.GetReqID(r.Context())))

		return
	}

	ref := models.StreamReference{URL: rec.URL, Ready: true}
	if err := h.engine.Bind(r.Context(), h.player, ref, playback.BindOptions{Live: false}); err != nil {
		log.Error("bind failed", sl.Err(err))

		handlers.Error(w, r, http.StatusBadGateway, response.Error("stream unavailable", middleware.GetReqID(r.Context())))

		return
	}

	h.journalView(log, rec.CameraID, models.ViewModeRecorded)

	render.JSON(w, r, ResolveResponse{
		StreamReference: ref,
		Strategy:        h.engine.Status().Strategy,
	})
}

// Unbind releases the console player.
func (h *StreamHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	h.engine.Unbind()

	render.JSON(w, r, h.engine.Status())
}

// Status reports the current binding and mirrored player flags.
func (h *StreamHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.engine.Status())
}

func (h *StreamHandler) journalView(log *slog.Logger, cameraID, mode string) {
	if h.journal == nil {
		return
	}

	snap := h.session.Snapshot()
	if err := h.journal.RecordView(cameraID, mode, snap.SelectedDate, snap.CurrentTime); err != nil {
		log.Warn("failed to journal view", sl.Err(err))
	}
}

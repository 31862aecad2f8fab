package historyhandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/api/response"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
)

type HistoryHandler struct {
	log     *slog.Logger
	history HistoryProvider
}

type HistoryProvider interface {
	Recent(limit int) ([]models.ViewEvent, error)
}

func New(log *slog.Logger, history HistoryProvider) *HistoryHandler {
	return &HistoryHandler{
		log:     log,
		history: history,
	}
}

func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.Recent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.history.Recent(limit)
	if err != nil {
		log.Error("failed to read history", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read history", middleware.GetReqID(r.Context())))

		return
	}

	if events == nil {
		events = []models.ViewEvent{}
	}

	render.JSON(w, r, events)
}

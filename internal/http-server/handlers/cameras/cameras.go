package camerashandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
)

type CameraHandler struct {
	log     *slog.Logger
	cameras CameraProvider
}

type CameraProvider interface {
	Cameras(ctx context.Context) ([]models.Camera, error)
}

func New(log *slog.Logger, cameras CameraProvider) *CameraHandler {
	return &CameraHandler{
		log:     log,
		cameras: cameras,
	}
}

// List returns the platform's camera inventory. A platform outage degrades to
// an empty list; the console shows "no cameras", not an error page.
func (h *CameraHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cameras.List"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cams, err := h.cameras.Cameras(r.Context())
	if err != nil {
		log.Error("failed to fetch cameras", sl.Err(err))

		render.JSON(w, r, []models.Camera{})

		return
	}

	render.JSON(w, r, cams)
}

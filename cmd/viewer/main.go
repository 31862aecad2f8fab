package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/boytur/cctv-viewer/internal/config"
	camerashandler "github.com/boytur/cctv-viewer/internal/http-server/handlers/cameras"
	historyhandler "github.com/boytur/cctv-viewer/internal/http-server/handlers/history"
	sessionhandler "github.com/boytur/cctv-viewer/internal/http-server/handlers/session"
	streamshandler "github.com/boytur/cctv-viewer/internal/http-server/handlers/streams"
	mwlogger "github.com/boytur/cctv-viewer/internal/http-server/middleware/logger"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/metrics"
	"github.com/boytur/cctv-viewer/internal/services/catalog"
	historyservice "github.com/boytur/cctv-viewer/internal/services/history"
	"github.com/boytur/cctv-viewer/internal/services/playback"
	"github.com/boytur/cctv-viewer/internal/services/session"
	"github.com/boytur/cctv-viewer/internal/services/streams"
	"github.com/boytur/cctv-viewer/internal/storage/postgres"
	historystorage "github.com/boytur/cctv-viewer/internal/storage/postgres/history"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting cctv viewer",
		slog.String("env", cfg.Env),
		slog.String("console_id", cfg.ConsoleID),
		slog.String("platform", cfg.Platform.Address),
	)

	cfg.DB.Password = os.Getenv("POSTGRES_PASSWORD")
	if cfg.DB.Password == "" {
		panic("POSTGRES_PASSWORD is required")
	}

	storage, err := postgres.New(cfg.DB)
	if err != nil {
		panic(err)
	}

	met := metrics.New()

	cat := catalog.New(log, cfg.Platform.Address, cfg.Platform.RequestTimeout)
	resolver := streams.New(log, met, cfg.Platform.Address, cfg.Platform.PollInterval, cfg.Platform.PollTimeout)

	player := playback.NewScreenPlayer(playback.MimeHLS, playback.MimeHLSAlt)
	engine := playback.NewEngine(log, met, playback.DefaultStrategies(log, cfg.Platform.LibraryFallback))

	store := session.New(log, met, cat)

	historyStorage := historystorage.New(storage)
	historyService := historyservice.New(log, historyStorage, historyStorage, cfg.ConsoleID)

	cameraHandler := camerashandler.New(log, cat)
	sessionHandler := sessionhandler.New(log, store, historyService)
	streamHandler := streamshandler.New(log, resolver, engine, player, store, historyService)
	historyHandler := historyhandler.New(log, historyService)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Handle("/metrics", met.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/cameras", cameraHandler.List)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Get("/timeline", sessionHandler.Timeline)
			r.Post("/select", sessionHandler.Select)
			r.Post("/seek", sessionHandler.Seek)
			r.Post("/skip", sessionHandler.Skip)
			r.Post("/speed", sessionHandler.Speed)
			r.Post("/playing", sessionHandler.Playing)
			r.Post("/bind", streamHandler.BindRecording)
		})

		r.Route("/streams", func(r chi.Router) {
			r.Get("/status", streamHandler.Status)
			r.Post("/unbind", streamHandler.Unbind)
			r.Post("/{cameraID}/resolve", streamHandler.Resolve)
		})

		r.Get("/history", historyHandler.Recent)
	})

	srv := &http.Server{
		Addr:        cfg.HTTPServer.Address,
		Handler:     router,
		ReadTimeout: cfg.HTTPServer.Timeout,
		// resolve holds the request open while polling stream readiness
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.Platform.PollTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", sl.Err(err))
			os.Exit(1)
		}
	}()

	log.Info("server started", slog.String("address", cfg.HTTPServer.Address))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	// release the decoder before the process goes away
	engine.Unbind()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.Timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

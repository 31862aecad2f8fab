// Package playback binds resolved stream references to the console player,
// picking a decode strategy from a fixed fallback chain.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/boytur/cctv-viewer/internal/domain/errs"
	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
	"github.com/boytur/cctv-viewer/internal/metrics"
)

type BindOptions struct {
	Live bool
}

// Status is a read snapshot of the engine.
type Status struct {
	Bound       bool   `json:"bound"`
	Strategy    string `json:"strategy,omitempty"`
	Source      string `json:"source,omitempty"`
	Live        bool   `json:"live"`
	Loaded      bool   `json:"loaded"`
	Playing     bool   `json:"playing"`
	Muted       bool   `json:"muted"`
	Fullscreen  bool   `json:"fullscreen"`
	StreamError bool   `json:"stream_error"`
}

// Engine owns one player binding. Exactly one strategy is active at a time;
// re-binding releases the previous strategy's resources before attaching the
// next, so no demuxer outlives its source.
type Engine struct {
	log        *slog.Logger
	met        *metrics.Metrics
	strategies []Strategy

	mu        sync.Mutex
	player    Player
	handle    Handle
	strategy  string
	live      bool
	loaded    bool
	streamErr bool
}

func NewEngine(log *slog.Logger, met *metrics.Metrics, strategies []Strategy) *Engine {
	return &Engine{
		log:        log,
		met:        met,
		strategies: strategies,
	}
}

// Bind attaches the reference to the player via the first strategy that
// accepts it. A previous binding is fully released first.
func (e *Engine) Bind(ctx context.Context, p Player, ref models.StreamReference, opts BindOptions) error {
	const op = "playback.Bind"

	log := e.log.With(
		slog.String("op", op),
		slog.String("url", ref.URL),
		slog.Bool("live", opts.Live),
	)

	if !ref.Ready {
		log.Warn("refusing to bind an unready stream")

		return fmt.Errorf("%s: %w", op, errs.ErrStreamNotReady)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()

	for _, strategy := range e.strategies {
		if !strategy.Probe(ctx, p, ref) {
			continue
		}

		handle, err := strategy.Attach(ctx, p, ref, opts.Live)
		if err != nil {
			log.Error("attach failed", slog.String("strategy", strategy.Name()), sl.Err(err))

			e.streamErr = true
			e.met.IncStreamErrors()

			return fmt.Errorf("%s: %w", op, err)
		}

		e.player = p
		e.handle = handle
		e.strategy = strategy.Name()
		e.live = opts.Live
		e.loaded = true
		e.streamErr = false

		e.met.IncBinds(strategy.Name())
		e.met.SetBoundStreams(1)

		log.Info("stream bound", slog.String("strategy", strategy.Name()))

		return nil
	}

	log.Error("no decode strategy accepted the source")

	return fmt.Errorf("%s: %w", op, errs.ErrUnsupportedFormat)
}

// Unbind releases the current binding. Safe to call when nothing is bound.
func (e *Engine) Unbind() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()
}

func (e *Engine) releaseLocked() {
	if e.handle != nil {
		e.handle.Release()
	}

	e.player = nil
	e.handle = nil
	e.strategy = ""
	e.live = false
	e.loaded = false
	e.streamErr = false

	e.met.SetBoundStreams(0)
}

// TogglePlay flips play/pause on the bound player. No-op when unbound.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return
	}

	if e.player.Playing() {
		e.player.Pause()
		return
	}

	if err := e.player.Play(); err != nil {
		e.log.Debug("play refused", sl.Err(err))
	}
}

// ToggleMute flips the mute flag on the bound player. No-op when unbound.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return
	}

	e.player.SetMuted(!e.player.Muted())
}

// ToggleFullscreen flips the fullscreen flag on the bound player. No-op when
// unbound.
func (e *Engine) ToggleFullscreen() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return
	}

	e.player.SetFullscreen(!e.player.Fullscreen())
}

// ReportStreamError records a decode error surfaced by the console. The engine
// never retries on its own; recovery is a user-initiated re-bind.
func (e *Engine) ReportStreamError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.streamErr = true
	e.met.IncStreamErrors()

	e.log.Error("stream error reported", slog.String("detail", msg))
}

// Status returns a snapshot of the binding and the mirrored player flags.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Bound:       e.handle != nil,
		Strategy:    e.strategy,
		Live:        e.live,
		Loaded:      e.loaded,
		StreamError: e.streamErr,
	}

	if e.player != nil {
		st.Source = e.player.Source()
		st.Playing = e.player.Playing()
		st.Muted = e.player.Muted()
		st.Fullscreen = e.player.Fullscreen()
	}

	return st
}

package playback

import (
	"context"
	"log/slog"
	"strings"

	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/lib/sl"
)

const playlistExtension = ".m3u8"

// IsPlaylist reports whether the URL points at a segmented playlist rather
// than a progressive file.
func IsPlaylist(sourceURL string) bool {
	if i := strings.IndexAny(sourceURL, "?#"); i >= 0 {
		sourceURL = sourceURL[:i]
	}

	return strings.HasSuffix(sourceURL, playlistExtension)
}

// Handle undoes an attach: stops the strategy and releases whatever it holds
// on the player.
type Handle interface {
	Release()
}

type releaseFunc func()

func (f releaseFunc) Release() { f() }

// Strategy is one way of getting a source to play. The engine walks strategies
// in fixed priority order and commits to the first whose Probe accepts the
// reference. Probes may touch the network; Attach must leave the player
// untouched when it fails.
type Strategy interface {
	Name() string
	Probe(ctx context.Context, p Player, ref models.StreamReference) bool
	Attach(ctx context.Context, p Player, ref models.StreamReference, live bool) (Handle, error)
}

// progressiveStrategy plays a plain file URL directly.
type progressiveStrategy struct {
	log *slog.Logger
}

func NewProgressiveStrategy(log *slog.Logger) Strategy {
	return &progressiveStrategy{log: log}
}

func (s *progressiveStrategy) Name() string { return "progressive" }

func (s *progressiveStrategy) Probe(_ context.Context, _ Player, ref models.StreamReference) bool {
	return !IsPlaylist(ref.URL)
}

func (s *progressiveStrategy) Attach(_ context.Context, p Player, ref models.StreamReference, live bool) (Handle, error) {
	p.SetSource(ref.URL)

	if live {
		if err := p.Play(); err != nil {
			// autoplay can be refused by the host; never a bind failure
			s.log.Debug("autoplay refused", sl.Err(err))
		}
	}

	return releaseFunc(func() {
		p.Pause()
		p.ClearSource()
	}), nil
}

// libraryStrategy plays a segmented playlist through a demux library obtained
// from the first available provider. The probe resolves the provider; Attach
// reuses what the probe found.
type libraryStrategy struct {
	log       *slog.Logger
	providers []DemuxerProvider
	demuxer   Demuxer
}

func NewLibraryStrategy(log *slog.Logger, providers ...DemuxerProvider) Strategy {
	return &libraryStrategy{log: log, providers: providers}
}

func (s *libraryStrategy) Name() string { return "adaptive-library" }

func (s *libraryStrategy) Probe(ctx context.Context, _ Player, ref models.StreamReference) bool {
	if !IsPlaylist(ref.URL) {
		return false
	}

	for _, provider := range s.providers {
		if provider.Available(ctx) {
			s.demuxer = provider.New(s.log)

			s.log.Debug("demux provider selected", slog.String("provider", provider.Name()))

			return true
		}
	}

	return false
}

func (s *libraryStrategy) Attach(ctx context.Context, p Player, ref models.StreamReference, live bool) (Handle, error) {
	demuxer := s.demuxer
	s.demuxer = nil

	info, err := demuxer.Load(ctx, p, ref.URL)
	if err != nil {
		demuxer.Destroy()

		return nil, err
	}

	if live {
		if err := p.Play(); err != nil {
			s.log.Debug("autoplay refused", sl.Err(err))
		}
	}

	s.log.Info("manifest parsed",
		slog.Int("segments", info.Segments),
		slog.Int("variants", info.Variants),
		slog.Bool("live", info.Live),
	)

	return releaseFunc(func() {
		p.Pause()
		demuxer.Destroy()
	}), nil
}

// nativeStrategy relies on the player's built-in support for the playlist
// format. Last resort after the library path.
type nativeStrategy struct {
	log *slog.Logger
}

func NewNativeStrategy(log *slog.Logger) Strategy {
	return &nativeStrategy{log: log}
}

func (s *nativeStrategy) Name() string { return "adaptive-native" }

func (s *nativeStrategy) Probe(_ context.Context, p Player, ref models.StreamReference) bool {
	if !IsPlaylist(ref.URL) {
		return false
	}

	return p.CanPlayNative(MimeHLS) || p.CanPlayNative(MimeHLSAlt)
}

func (s *nativeStrategy) Attach(_ context.Context, p Player, ref models.StreamReference, live bool) (Handle, error) {
	p.SetSource(ref.URL)

	if live {
		if err := p.Play(); err != nil {
			s.log.Debug("autoplay refused", sl.Err(err))
		}
	}

	return releaseFunc(func() {
		p.Pause()
		p.ClearSource()
	}), nil
}

// DefaultStrategies is the fixed priority order of the decode chain.
func DefaultStrategies(log *slog.Logger, libraryFallback string) []Strategy {
	return []Strategy{
		NewProgressiveStrategy(log),
		NewLibraryStrategy(log, BuiltinProvider{}, &RemoteProvider{Address: libraryFallback}),
		NewNativeStrategy(log),
	}
}

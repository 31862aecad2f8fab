package playback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/grafov/m3u8"
)

// ManifestInfo is what the demuxer learned from a parsed playlist.
type ManifestInfo struct {
	Variants       int
	Segments       int
	TargetDuration float64
	Live           bool
}

// Demuxer feeds a segmented source to a player.
type Demuxer interface {
	// Load fetches and parses the playlist and attaches the source to the
	// player. Returning without error is the "manifest parsed" moment.
	Load(ctx context.Context, p Player, sourceURL string) (ManifestInfo, error)
	Destroy()
}

// DemuxerProvider hands out demuxers. Providers are probed in order; the first
// available one wins.
type DemuxerProvider interface {
	Name() string
	Available(ctx context.Context) bool
	New(log *slog.Logger) Demuxer
}

// BuiltinProvider serves the demuxer compiled into the binary. Always available.
type BuiltinProvider struct{}

func (BuiltinProvider) Name() string { return "builtin" }

func (BuiltinProvider) Available(context.Context) bool { return true }

func (BuiltinProvider) New(log *slog.Logger) Demuxer {
	return &hlsDemuxer{
		log:    log,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// RemoteProvider checks a secondary location for demux support before handing
// out the same parser, for consoles provisioned without the builtin one.
type RemoteProvider struct {
	Address string
	Client  *http.Client
}

func (p *RemoteProvider) Name() string { return "remote" }

func (p *RemoteProvider) Available(ctx context.Context) bool {
	if p.Address == "" {
		return false
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.Address, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (p *RemoteProvider) New(log *slog.Logger) Demuxer {
	return &hlsDemuxer{
		log:    log,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// hlsDemuxer parses HLS playlists and hands the source to the player.
type hlsDemuxer struct {
	log      *slog.Logger
	client   *http.Client
	attached Player
}

func (d *hlsDemuxer) Load(ctx context.Context, p Player, sourceURL string) (ManifestInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return ManifestInfo{}, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return ManifestInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ManifestInfo{}, fmt.Errorf("playlist fetch: unexpected status %d", resp.StatusCode)
	}

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return ManifestInfo{}, fmt.Errorf("playlist parse: %w", err)
	}

	var info ManifestInfo
	switch listType {
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		info.Segments = int(media.Count())
		info.TargetDuration = media.TargetDuration
		info.Live = !media.Closed
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		info.Variants = len(master.Variants)
		info.Live = true
	default:
		return ManifestInfo{}, fmt.Errorf("playlist parse: unknown list type")
	}

	d.attached = p
	p.SetSource(sourceURL)

	d.log.Debug("manifest parsed",
		slog.String("url", sourceURL),
		slog.Int("segments", info.Segments),
		slog.Int("variants", info.Variants),
	)

	return info, nil
}

func (d *hlsDemuxer) Destroy() {
	if d.attached != nil {
		d.attached.ClearSource()
		d.attached = nil
	}
}

package playback

import "sync"

// MIME types under which engines advertise native HLS support.
const (
	MimeHLS    = "application/vnd.apple.mpegurl"
	MimeHLSAlt = "application/x-mpegURL"
)

// Player is the surface a stream gets bound to. The console UI mirrors it;
// the engine is its only writer.
type Player interface {
	SetSource(url string)
	ClearSource()
	Source() string

	Play() error
	Pause()
	Playing() bool

	SetMuted(muted bool)
	Muted() bool

	SetFullscreen(fullscreen bool)
	Fullscreen() bool

	CanPlayNative(mimeType string) bool
}

// ScreenPlayer models the console's video surface. It starts muted, the way
// wall displays come up.
type ScreenPlayer struct {
	mu          sync.Mutex
	source      string
	playing     bool
	muted       bool
	fullscreen  bool
	nativeTypes map[string]bool
}

// NewScreenPlayer returns a muted, unbound player. nativeTypes lists the MIME
// types the surface can decode without a demux library.
func NewScreenPlayer(nativeTypes ...string) *ScreenPlayer {
	types := make(map[string]bool, len(nativeTypes))
	for _, t := range nativeTypes {
		types[t] = true
	}

	return &ScreenPlayer{
		muted:       true,
		nativeTypes: types,
	}
}

func (p *ScreenPlayer) SetSource(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = url
}

func (p *ScreenPlayer) ClearSource() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = ""
	p.playing = false
}

func (p *ScreenPlayer) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

func (p *ScreenPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	return nil
}

func (p *ScreenPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *ScreenPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *ScreenPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *ScreenPlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *ScreenPlayer) SetFullscreen(fullscreen bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fullscreen = fullscreen
}

func (p *ScreenPlayer) Fullscreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fullscreen
}

func (p *ScreenPlayer) CanPlayNative(mimeType string) bool {
	return p.nativeTypes[mimeType]
}

package wiggleroom

import (
	"errors"
	"sync"
	"time"

	intaudio "github.com/timini/wiggleroom/internal/audio"
)

// Player plays a Rack in realtime through the shared audio context.
// The stream is generative and never finishes; Stop releases the
// device.
type Player struct {
	mu     sync.Mutex
	rack   *Rack
	stream *intaudio.Stream
	volume float64

	eventCh   chan Event
	eventChMu sync.Mutex
}

// NewPlayer builds a rack from opts and opens an output stream for it.
func NewPlayer(sampleRate int, opts ...Option) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	return NewPlayerFor(NewRack(sampleRate, opts...))
}

// NewPlayerFor opens an output stream for an existing rack.
func NewPlayerFor(rack *Rack) (*Player, error) {
	stream, err := intaudio.NewStream(rack.SampleRate(), rack)
	if err != nil {
		return nil, err
	}
	p := &Player{
		rack:   rack,
		stream: stream,
		volume: 1,
	}
	rack.SetEventFunc(p.sendEvent)
	return p, nil
}

// Rack returns the rack being played.
func (p *Player) Rack() *Rack { return p.rack }

// Play starts or resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		p.stream.Play()
	}
}

// Pause suspends playback without losing position or module state.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		p.stream.Pause()
	}
}

// Resume is an alias for Play.
func (p *Player) Resume() { p.Play() }

// IsPlaying reports whether the stream is currently running.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream != nil && p.stream.IsPlaying()
}

// Stop releases the audio stream. The player cannot be restarted
// afterwards; build a new one.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	return err
}

// Position returns the playback position the listener actually hears.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return 0
	}
	return p.stream.Position()
}

// SetMasterVolume sets the output gain in [0, 1].
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.stream != nil {
		p.stream.SetVolume(volume)
	}
}

// MasterVolume returns the current output gain.
func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Watch returns a channel that receives rack events: clock ticks,
// gate triggers and melodic notes. The channel is buffered (cap 64)
// and events are dropped when it is full; receive in a goroutine to
// see them all. Only the most recent Watch channel receives events.
func (p *Player) Watch() <-chan Event {
	ch := make(chan Event, 64)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// sendEvent runs on the audio goroutine.
func (p *Player) sendEvent(ev Event) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}

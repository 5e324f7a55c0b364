// Package audio bridges a per-sample render loop to the ebiten audio
// device. The rack renders an endless stereo stream, so the bridge has
// no notion of playback ending.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Renderer produces interleaved stereo float32 samples on demand.
type Renderer interface {
	Render(dst []float32)
}

// streamReader adapts a Renderer to the io.Reader the audio context
// consumes: 32-bit little-endian floats, 8 bytes per stereo frame.
type streamReader struct {
	mu  sync.Mutex
	src Renderer
	buf []float32
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.src.Render(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 8, nil
}

func (r *streamReader) Close() error { return nil }

// The process can hold only one audio context, created at a fixed
// sample rate. Every stream in the process must agree on that rate.
var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// Stream is a running audio output fed by a Renderer.
type Stream struct {
	player *ebitaudio.Player
	reader *streamReader
}

// NewStream opens an output stream for src at the given sample rate.
// It does not start playback.
func NewStream(sampleRate int, src Renderer) (*Stream, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := &streamReader{src: src}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Stream{player: pl, reader: reader}, nil
}

func (s *Stream) Play()  { s.player.Play() }
func (s *Stream) Pause() { s.player.Pause() }

func (s *Stream) IsPlaying() bool { return s.player.IsPlaying() }

// SetVolume sets the output gain in [0, 1].
func (s *Stream) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.player.SetVolume(v)
}

// Position returns the playback position the listener actually hears.
func (s *Stream) Position() time.Duration {
	return s.player.Position()
}

// Close stops playback and releases the device player.
func (s *Stream) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}

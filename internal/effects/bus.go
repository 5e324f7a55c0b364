// Package effects is the rack's master bus: a tempo-synced ping-pong
// delay behind a soft clipper that guards the output stage.
package effects

import "math"

// maxDelaySeconds bounds the delay buffer; tempo sync never asks for
// more than one clock period.
const maxDelaySeconds = 2.0

// PingPong is a mono-in stereo-out delay. Repeats alternate between
// the left and right channels.
type PingPong struct {
	bufL, bufR []float64
	pos        int
	offset     int
	feedback   float64
}

// NewPingPong creates a delay at the given sample rate with a 250 ms
// time and moderate feedback.
func NewPingPong(sampleRate int) *PingPong {
	size := int(maxDelaySeconds * float64(sampleRate))
	p := &PingPong{
		bufL:     make([]float64, size),
		bufR:     make([]float64, size),
		feedback: 0.45,
	}
	p.SetTime(0.25, sampleRate)
	return p
}

// SetTime sets the delay time in seconds, clamped to the buffer.
func (p *PingPong) SetTime(seconds float64, sampleRate int) {
	n := int(seconds * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	if n >= len(p.bufL) {
		n = len(p.bufL) - 1
	}
	p.offset = n
}

// SetFeedback sets the repeat gain, clamped below unity.
func (p *PingPong) SetFeedback(fb float64) {
	if fb < 0 {
		fb = 0
	}
	if fb > 0.95 {
		fb = 0.95
	}
	p.feedback = fb
}

// Process feeds one dry sample and returns the wet stereo pair.
func (p *PingPong) Process(in float64) (left, right float64) {
	read := p.pos - p.offset
	if read < 0 {
		read += len(p.bufL)
	}
	wetL := p.bufL[read]
	wetR := p.bufR[read]

	// The input enters the left line; each repeat crosses sides.
	p.bufL[p.pos] = in + wetR*p.feedback
	p.bufR[p.pos] = wetL * p.feedback

	p.pos++
	if p.pos >= len(p.bufL) {
		p.pos = 0
	}
	return wetL, wetR
}

// Reset clears the delay lines.
func (p *PingPong) Reset() {
	for i := range p.bufL {
		p.bufL[i] = 0
		p.bufR[i] = 0
	}
	p.pos = 0
}

// Bus mixes the dry monitor signal with the delay and soft-clips the
// result.
type Bus struct {
	sampleRate int
	delay      *PingPong
	wet        float64
}

// NewBus creates a master bus with the delay mixed out (wet 0).
func NewBus(sampleRate int) *Bus {
	return &Bus{
		sampleRate: sampleRate,
		delay:      NewPingPong(sampleRate),
	}
}

// SetWet sets the delay mix in [0, 1].
func (b *Bus) SetWet(wet float64) {
	if wet < 0 {
		wet = 0
	}
	if wet > 1 {
		wet = 1
	}
	b.wet = wet
}

// Wet returns the delay mix.
func (b *Bus) Wet() float64 { return b.wet }

// SyncToPeriod sets the delay time to a dotted eighth of the clock
// period.
func (b *Bus) SyncToPeriod(period float64) {
	if period <= 0 {
		return
	}
	b.delay.SetTime(period*0.75, b.sampleRate)
}

// Process runs one mono sample through the bus and returns the
// output frame.
func (b *Bus) Process(in float64) (left, right float32) {
	wetL, wetR := b.delay.Process(in * b.wet)
	l := softClip(in + wetL)
	r := softClip(in + wetR)
	return float32(l), float32(r)
}

// Reset clears the delay lines.
func (b *Bus) Reset() { b.delay.Reset() }

// softClip folds peaks toward unity with a tanh curve. Nearly linear
// below 0.5, never exceeds 1.
func softClip(x float64) float64 {
	return math.Tanh(x)
}

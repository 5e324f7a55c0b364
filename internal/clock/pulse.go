package clock

import "github.com/timini/wiggleroom/internal/dsp"

// PulseClock is a minimal master clock source: a 0/10V pulse train at a
// given BPM, used to drive the sequencer modules when no external host
// clock exists (offline render, MIDI export, the demo player).
type PulseClock struct {
	bpm        float64
	pulseWidth float64 // fraction of the period the output stays high
	phase      float64 // seconds into the current period
	first      bool
}

// NewPulseClock returns a clock at the given BPM with a 10% pulse width.
func NewPulseClock(bpm float64) *PulseClock {
	c := &PulseClock{pulseWidth: 0.1}
	c.SetBPM(bpm)
	c.Reset()
	return c
}

// SetBPM sets the tempo, clamped to a usable 10..999 range.
func (c *PulseClock) SetBPM(bpm float64) {
	c.bpm = dsp.Clamp(bpm, 10, 999)
}

// BPM returns the current tempo.
func (c *PulseClock) BPM() float64 { return c.bpm }

// Period returns the pulse period in seconds.
func (c *PulseClock) Period() float64 { return 60.0 / c.bpm }

// SetPulseWidth sets the high fraction of each period, clamped to
// [0.01, 0.9].
func (c *PulseClock) SetPulseWidth(w float64) {
	c.pulseWidth = dsp.Clamp(w, 0.01, 0.9)
}

// Reset rewinds the clock so the next Process call starts a pulse.
func (c *PulseClock) Reset() {
	c.phase = 0
	c.first = true
}

// Process advances by dt seconds and returns the output voltage.
func (c *PulseClock) Process(dt float64) float64 {
	period := c.Period()
	if c.first {
		c.first = false
	} else {
		c.phase += dt
		for c.phase >= period {
			c.phase -= period
		}
	}
	if c.phase < period*c.pulseWidth {
		return 10.0
	}
	return 0.0
}

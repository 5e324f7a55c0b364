// Package voice provides the small synthesizer voices used to monitor
// the rack: a filtered sawtooth for the melodic sequencer and short
// sine blips for the trigger channels.
package voice

import "math"

// refFreq is the frequency at 0 V on the pitch input (C4).
const refFreq = 261.6256

// Acid renders a pitch/gate/accent stream as a sawtooth through a
// one-pole lowpass. The gate opens an attack/release envelope; accent
// boosts both level and filter cutoff for the duration of the note.
type Acid struct {
	sampleRate float64
	phase      float64
	env        float64
	accent     float64
	lp         float64

	cutoffHz float64
	envMod   float64

	attackCoef  float64
	releaseCoef float64
}

// NewAcid creates a voice at the given sample rate with default
// filter settings.
func NewAcid(sampleRate float64) *Acid {
	v := &Acid{
		sampleRate: sampleRate,
		cutoffHz:   500,
		envMod:     6,
	}
	v.attackCoef = onePoleCoef(sampleRate, 0.002)
	v.releaseCoef = onePoleCoef(sampleRate, 0.12)
	return v
}

// SetCutoff sets the base filter cutoff in Hz.
func (v *Acid) SetCutoff(hz float64) {
	if hz < 20 {
		hz = 20
	}
	v.cutoffHz = hz
}

// SetEnvMod sets how far the envelope opens the filter above the base
// cutoff, as a multiple of the base.
func (v *Acid) SetEnvMod(amount float64) {
	if amount < 0 {
		amount = 0
	}
	v.envMod = amount
}

// Process renders one sample. pitchV is in volts (1 V/oct, 0 V = C4),
// gateV and accentV are gate voltages.
func (v *Acid) Process(pitchV, gateV, accentV float64) float64 {
	freq := refFreq * math.Exp2(pitchV)
	v.phase += freq / v.sampleRate
	if v.phase >= 1 {
		v.phase -= math.Floor(v.phase)
	}
	saw := 2*v.phase - 1

	gateTarget := 0.0
	if gateV > 1 {
		gateTarget = 1
	}
	if gateTarget > v.env {
		v.env += v.attackCoef * (gateTarget - v.env)
	} else {
		v.env += v.releaseCoef * (gateTarget - v.env)
	}

	accTarget := 0.0
	if accentV > 1 {
		accTarget = 1
	}
	if accTarget > v.accent {
		v.accent = accTarget
	} else {
		v.accent += v.releaseCoef * (accTarget - v.accent)
	}

	cutoff := v.cutoffHz * (1 + v.envMod*v.env + 2*v.accent)
	nyquist := v.sampleRate * 0.45
	if cutoff > nyquist {
		cutoff = nyquist
	}
	alpha := 1 - math.Exp(-2*math.Pi*cutoff/v.sampleRate)
	v.lp += alpha * (saw*v.env - v.lp)

	return v.lp * (0.7 + 0.3*v.accent)
}

// Reset silences the voice and clears filter state.
func (v *Acid) Reset() {
	v.phase = 0
	v.env = 0
	v.accent = 0
	v.lp = 0
}

// Blip is a percussive sine ping used to audition trigger outputs.
// Each Trigger restarts the envelope from full level.
type Blip struct {
	sampleRate float64
	freq       float64
	phase      float64
	env        float64
	decayMul   float64
}

// NewBlip creates a blip voice at the given frequency with a fixed
// 60 ms decay.
func NewBlip(sampleRate, freq float64) *Blip {
	return &Blip{
		sampleRate: sampleRate,
		freq:       freq,
		decayMul:   math.Exp(-1 / (sampleRate * 0.06)),
	}
}

// Trigger restarts the blip.
func (b *Blip) Trigger() {
	b.env = 1
	b.phase = 0
}

// Active reports whether the blip is still audible.
func (b *Blip) Active() bool {
	return b.env > 1e-4
}

// Process renders one sample.
func (b *Blip) Process() float64 {
	if b.env <= 1e-4 {
		return 0
	}
	out := math.Sin(2*math.Pi*b.phase) * b.env
	b.phase += b.freq / b.sampleRate
	if b.phase >= 1 {
		b.phase -= 1
	}
	b.env *= b.decayMul
	return out
}

// onePoleCoef converts a time constant in seconds to a per-sample
// smoothing coefficient.
func onePoleCoef(sampleRate, seconds float64) float64 {
	return 1 - math.Exp(-1/(sampleRate*seconds))
}

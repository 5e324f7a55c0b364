// Package dsp holds the small sample-rate utilities shared by the
// sequencer engines: hysteresis edge detection, timed pulses, clamping
// and slew. Everything here is allocation-free and safe to call once
// per audio sample.
package dsp

import "math"

// Default hysteresis thresholds for gate/clock inputs on a 0-10V convention.
const (
	SchmittLow  = 0.1
	SchmittHigh = 1.0
)

// SchmittTrigger detects rising edges through a hysteresis comparator.
// The zero value is ready to use and starts in the low state.
type SchmittTrigger struct {
	high bool
}

// Process feeds one sample and reports whether a rising edge fired.
// The trigger arms when the voltage falls to low or below and fires
// once when it then reaches high or above.
func (s *SchmittTrigger) Process(v, low, high float64) bool {
	if s.high {
		if v <= low {
			s.high = false
		}
		return false
	}
	if v >= high {
		s.high = true
		return true
	}
	return false
}

// ProcessDefault applies the standard 0.1/1.0 thresholds.
func (s *SchmittTrigger) ProcessDefault(v float64) bool {
	return s.Process(v, SchmittLow, SchmittHigh)
}

// High reports the current comparator state.
func (s *SchmittTrigger) High() bool { return s.high }

// Reset returns the comparator to the low (armed) state.
func (s *SchmittTrigger) Reset() { s.high = false }

// PulseGenerator emits a timed one-shot pulse. Trigger starts (or
// extends) the pulse; Process advances time and reports whether the
// pulse is still active.
type PulseGenerator struct {
	remaining float64
}

// Trigger starts a pulse lasting the given number of seconds. A longer
// pending pulse is not shortened.
func (p *PulseGenerator) Trigger(seconds float64) {
	if seconds > p.remaining {
		p.remaining = seconds
	}
}

// Process advances by dt seconds and reports whether the pulse is high.
func (p *PulseGenerator) Process(dt float64) bool {
	if p.remaining <= 0 {
		return false
	}
	p.remaining -= dt
	return true
}

// Reset cancels any pending pulse.
func (p *PulseGenerator) Reset() { p.remaining = 0 }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// SafeDiv divides num by den with the denominator clamped away from
// zero. Clock-period math runs at audio rate; a zero or denormal
// denominator here would push NaN/Inf into everything downstream.
func SafeDiv(num, den, minDen float64) float64 {
	if den < minDen {
		den = minDen
	}
	return num / den
}

// SlewExp moves current toward target with a one-pole exponential
// response of the given time constant (seconds).
func SlewExp(current, target, dt, tau float64) float64 {
	if tau <= 0 {
		return target
	}
	k := 1.0 - math.Exp(-dt/tau)
	return current + (target-current)*k
}

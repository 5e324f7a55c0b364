// Package clock derives the logical sequencer tick from an external
// clock signal: period measurement with debounce and loss detection,
// musical multiply/divide ratios, and swing timing.
package clock

import "github.com/timini/wiggleroom/internal/dsp"

const (
	// DefaultPeriod is the assumed clock period before lock: 0.5s = 120 BPM.
	DefaultPeriod = 0.5

	// Debounce rejects external edges closer than 1ms (clock jitter,
	// double triggers).
	Debounce = 0.001

	// Timeout unlocks the scheduler after 2s without an external edge.
	Timeout = 2.0

	// SwingMin and SwingMax bound the swing percentage. 50 = even.
	SwingMin = 50.0
	SwingMax = 75.0
)

// Scheduler tracks the external clock and decides, once per audio
// sample, whether a logical tick fires. Swing alternates a long and a
// short interval; an external edge always ticks immediately and starts
// the long half, so the swing pattern stays locked to the beat.
type Scheduler struct {
	edge dsp.SchmittTrigger

	period         float64
	timeSinceClock float64
	tickPhase      float64
	locked         bool
	running        bool
	hadFirstTick   bool
	swingLong      bool

	speedIdx     int
	prevSpeedIdx int
	swingPercent float64
}

// NewScheduler returns a scheduler at x1 speed, no swing, unlocked.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.Reset()
	return s
}

// Reset restores the power-on state: 120 BPM period assumption,
// unlocked, running, x1 speed, even swing.
func (s *Scheduler) Reset() {
	s.edge.Reset()
	s.period = DefaultPeriod
	s.timeSinceClock = 0
	s.tickPhase = 0
	s.locked = false
	s.running = true
	s.hadFirstTick = false
	s.swingLong = true
	s.speedIdx = DefaultSpeedIndex
	s.prevSpeedIdx = DefaultSpeedIndex
	s.swingPercent = SwingMin
}

// SetSpeedIndex selects a master speed from SpeedRatios. A change
// forces resynchronization on the next external edge.
func (s *Scheduler) SetSpeedIndex(idx int) {
	s.speedIdx = dsp.ClampInt(idx, 0, len(SpeedRatios)-1)
}

// SpeedIndex returns the active master speed index.
func (s *Scheduler) SpeedIndex() int { return s.speedIdx }

// SetSwingPercent sets the swing amount, clamped to [50,75].
func (s *Scheduler) SetSwingPercent(pct float64) {
	s.swingPercent = dsp.Clamp(pct, SwingMin, SwingMax)
}

// SetRunning gates tick generation; period measurement continues while
// stopped so the scheduler stays locked.
func (s *Scheduler) SetRunning(r bool) { s.running = r }

// Running reports the run gate state.
func (s *Scheduler) Running() bool { return s.running }

// Locked reports whether a clock period has been measured and has not
// timed out.
func (s *Scheduler) Locked() bool { return s.locked }

// Period returns the last measured external clock period in seconds.
func (s *Scheduler) Period() float64 { return s.period }

// SetPeriod restores a persisted clock period.
func (s *Scheduler) SetPeriod(p float64) {
	if p > 0 {
		s.period = p
	}
}

// Process advances the scheduler by one sample. clockV is the external
// clock input voltage; dt the sample duration. It reports whether a
// logical tick fires on this sample.
func (s *Scheduler) Process(clockV, dt float64) bool {
	s.timeSinceClock += dt

	clockEdge := false
	if s.edge.ProcessDefault(clockV) {
		if s.timeSinceClock > Debounce {
			s.period = s.timeSinceClock
			s.locked = true
		}
		s.timeSinceClock = 0
		clockEdge = true
	}

	if s.timeSinceClock > Timeout {
		s.locked = false
		s.hadFirstTick = false
	}

	if s.speedIdx != s.prevSpeedIdx {
		s.hadFirstTick = false
		s.tickPhase = 0
		s.prevSpeedIdx = s.speedIdx
	}

	if !s.running || !s.locked {
		return false
	}

	ratio := SpeedRatios[s.speedIdx]
	baseInterval := dsp.SafeDiv(s.period, ratio, 1e-6)
	swingRatio := s.swingPercent / 100
	longInterval := 2 * baseInterval * swingRatio
	shortInterval := 2 * baseInterval * (1 - swingRatio)

	if clockEdge {
		// The edge always ticks and restarts the long half of the
		// swing pair.
		s.hadFirstTick = true
		s.swingLong = true
		s.tickPhase = 0
		return true
	}

	if !s.hadFirstTick {
		return false
	}

	interval := shortInterval
	if s.swingLong {
		interval = longInterval
	}
	s.tickPhase += dt
	if s.tickPhase >= interval {
		// Subtract rather than zero the phase to keep sub-sample
		// accuracy across ticks.
		s.tickPhase -= interval
		s.swingLong = !s.swingLong
		return true
	}
	return false
}

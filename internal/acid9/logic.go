package acid9

// Mode is a musical logic condition evaluated per tick to drive the
// gate, slide and accent outputs.
type Mode int

const (
	ModeAlways Mode = iota // every tick
	ModeNever
	ModeChange // pitch changed from previous
	ModeSame
	ModeRise
	ModeDrop
	ModeLeap // interval beyond threshold
	ModeStep // interval within threshold
	ModePeak
	ModeValley
	ModeThird // interval of 3 or 4 semitones
	ModeFifth
	ModeOctave
	ModeBPos // gear B offset sign tests
	ModeBNeg
	ModeBZero
	ModeAgree // gears moving the same direction
	ModeClash
	NumModes
)

// ModeNames label the modes in order, as shown on the panel.
var ModeNames = [...]string{
	"Always", "Never", "Change", "Same", "Rise", "Drop", "Leap", "Step",
	"Peak", "Valley", "3rd", "5th", "Oct", "B+", "B-", "B=0", "Agree", "Clash",
}

// Name returns the mode's display label.
func (m Mode) Name() string {
	if m < 0 || m >= NumModes {
		return "?"
	}
	return ModeNames[m]
}

// Logic evaluates interval conditions over a three-tick pitch history
// plus the per-gear movement deltas.
type Logic struct {
	currentPitch  int
	prevPitch     int
	prevPrevPitch int
	gearBOffset   int

	interval    int
	absInterval int
	gearADelta  int
	gearBDelta  int
}

// NewLogic returns a logic engine with a flat history.
func NewLogic() *Logic {
	l := &Logic{}
	l.Reset()
	return l
}

// Update records the state for one tick and precomputes the interval
// and gear deltas every mode reads.
func (l *Logic) Update(currentPitch, prevPitch, prevPrevPitch,
	gearAValue, prevGearAValue, gearBOffset, prevGearBOffset int) {
	l.currentPitch = currentPitch
	l.prevPitch = prevPitch
	l.prevPrevPitch = prevPrevPitch
	l.gearBOffset = gearBOffset

	l.interval = currentPitch - prevPitch
	l.absInterval = l.interval
	if l.absInterval < 0 {
		l.absInterval = -l.absInterval
	}
	l.gearADelta = gearAValue - prevGearAValue
	l.gearBDelta = gearBOffset - prevGearBOffset
}

// Reset flattens the history to middle C.
func (l *Logic) Reset() {
	l.currentPitch = 12
	l.prevPitch = 12
	l.prevPrevPitch = 12
	l.gearBOffset = 0
	l.interval = 0
	l.absInterval = 0
	l.gearADelta = 0
	l.gearBDelta = 0
}

// Interval returns the signed interval of the last tick.
func (l *Logic) Interval() int { return l.interval }

// AbsInterval returns the interval magnitude of the last tick.
func (l *Logic) AbsInterval() int { return l.absInterval }

// Evaluate tests a mode against the recorded state. threshold applies
// to the Leap and Step modes. Unknown modes evaluate false.
func (l *Logic) Evaluate(mode Mode, threshold int) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	case ModeChange:
		return l.currentPitch != l.prevPitch
	case ModeSame:
		return l.currentPitch == l.prevPitch
	case ModeRise:
		return l.interval > 0
	case ModeDrop:
		return l.interval < 0
	case ModeLeap:
		return l.absInterval > threshold
	case ModeStep:
		return l.absInterval <= threshold && l.absInterval > 0
	case ModePeak:
		// A peak: the previous note was rising and this one falls.
		if l.currentPitch > l.prevPitch && l.prevPitch > l.prevPrevPitch {
			return false
		}
		return l.currentPitch < l.prevPitch && l.prevPitch > l.prevPrevPitch
	case ModeValley:
		return l.currentPitch > l.prevPitch && l.prevPitch < l.prevPrevPitch
	case ModeThird:
		return l.absInterval == 3 || l.absInterval == 4
	case ModeFifth:
		return l.absInterval == 7
	case ModeOctave:
		return l.absInterval == 12
	case ModeBPos:
		return l.gearBOffset > 0
	case ModeBNeg:
		return l.gearBOffset < 0
	case ModeBZero:
		return l.gearBOffset == 0
	case ModeAgree:
		return (l.gearADelta > 0 && l.gearBDelta > 0) ||
			(l.gearADelta < 0 && l.gearBDelta < 0) ||
			(l.gearADelta == 0 && l.gearBDelta == 0)
	case ModeClash:
		return (l.gearADelta > 0 && l.gearBDelta < 0) ||
			(l.gearADelta < 0 && l.gearBDelta > 0)
	}
	return false
}

// EvaluateWithProb composes a mode with an independent probability
// draw. randomValue is a uniform draw in [0,1); the draw is compared
// only when the condition holds.
func (l *Logic) EvaluateWithProb(mode Mode, threshold int, probability, randomValue float64) bool {
	if !l.Evaluate(mode, threshold) {
		return false
	}
	return randomValue < probability
}

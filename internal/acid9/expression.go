package acid9

// ForceMode selects how the expression engine decides accents.
type ForceMode int

const (
	// ForceGravity accents pitch drops.
	ForceGravity ForceMode = iota
	// ForceApex accents the highest note of the recent window.
	ForceApex
	// ForceInflection accents direction reversals.
	ForceInflection
)

// ForceModeNames label the force modes in order.
var ForceModeNames = [...]string{"Gravity", "Apex", "Inflection"}

const pitchHistorySize = 4

// Expression is the continuous-parameter alternative to the discrete
// logic modes, driving slide and accent only. Viscosity is bipolar:
// negative ("liquid") slides on small intervals, positive ("elastic")
// slides on large ones, and a dead zone around zero disables slides.
type Expression struct {
	viscosity  float64
	forceMode  ForceMode
	forceDepth float64

	slide  bool
	accent bool

	pitchHistory [pitchHistorySize]int
	historyIndex int
}

// NewExpression returns an engine with slides disabled and gravity
// accents at half depth.
func NewExpression() *Expression {
	e := &Expression{forceDepth: 0.5}
	for i := range e.pitchHistory {
		e.pitchHistory[i] = 12
	}
	return e
}

// SetViscosity sets the bipolar slide control, clamped to [-1,1].
func (e *Expression) SetViscosity(v float64) {
	e.viscosity = clampFloat(v, -1, 1)
}

// SetForceMode selects the accent strategy.
func (e *Expression) SetForceMode(m ForceMode) {
	if m < ForceGravity || m > ForceInflection {
		m = ForceGravity
	}
	e.forceMode = m
}

// SetForceDepth sets accent density, clamped to [0,1]. Low depth keeps
// only the strongest accents.
func (e *Expression) SetForceDepth(d float64) {
	e.forceDepth = clampFloat(d, 0, 1)
}

// ForceDepth returns the accent depth, for accent intensity scaling.
func (e *Expression) ForceDepth() float64 { return e.forceDepth }

// Slide reports the slide decision of the last Update.
func (e *Expression) Slide() bool { return e.slide }

// Accent reports the accent decision of the last Update.
func (e *Expression) Accent() bool { return e.accent }

// Update records one tick's pitch and recomputes slide and accent.
func (e *Expression) Update(currentPitch, previousPitch int) {
	e.pitchHistory[e.historyIndex] = currentPitch
	e.historyIndex = (e.historyIndex + 1) % pitchHistorySize

	interval := currentPitch - previousPitch
	if interval < 0 {
		interval = -interval
	}

	e.slide = e.calculateSlide(interval)
	e.accent = e.calculateAccent(currentPitch, previousPitch)
}

// Reset flattens the history and clears both outputs.
func (e *Expression) Reset() {
	for i := range e.pitchHistory {
		e.pitchHistory[i] = 12
	}
	e.historyIndex = 0
	e.slide = false
	e.accent = false
}

func (e *Expression) calculateSlide(interval int) bool {
	v := e.viscosity
	if v > -0.1 && v < 0.1 {
		return false
	}
	if v < 0 {
		// Liquid: slide on small intervals, threshold grows with |v|.
		threshold := int(2 + (-v)*3) // 2..5 semitones
		return interval > 0 && interval <= threshold
	}
	// Elastic: slide on large intervals, threshold shrinks with v.
	threshold := int(7 - v*4) // 7..3 semitones
	return interval >= threshold
}

func (e *Expression) calculateAccent(currentPitch, previousPitch int) bool {
	switch e.forceMode {
	case ForceGravity:
		drop := previousPitch - currentPitch
		if drop <= 0 {
			return false
		}
		minDrop := int((1 - e.forceDepth) * 7)
		return drop >= minDrop

	case ForceApex:
		maxPitch := currentPitch
		for _, p := range e.pitchHistory {
			if p > maxPitch {
				maxPitch = p
			}
		}
		isApex := currentPitch >= maxPitch
		if isApex && e.forceDepth < 1 {
			sum := 0
			for _, p := range e.pitchHistory {
				sum += p
			}
			avg := float64(sum) / pitchHistorySize
			margin := (1 - e.forceDepth) * 5
			isApex = float64(currentPitch) >= avg+margin
		}
		return isApex

	case ForceInflection:
		// The slot before the previous pitch: history writes current at
		// historyIndex-1, so two ticks back sits at historyIndex-3.
		twoAgo := e.pitchHistory[(e.historyIndex+pitchHistorySize-3)%pitchHistorySize]
		prevDir := previousPitch - twoAgo
		currDir := currentPitch - previousPitch
		inflection := (prevDir > 0 && currDir < 0) || (prevDir < 0 && currDir > 0)
		if !inflection {
			return false
		}
		totalChange := absInt(prevDir) + absInt(currDir)
		minChange := int((1 - e.forceDepth) * 6)
		return totalChange >= minChange
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

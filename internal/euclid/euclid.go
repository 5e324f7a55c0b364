// Package euclid generates Euclidean rhythm patterns with Bjorklund's
// algorithm and tracks a playhead over them.
package euclid

const (
	// MaxSteps is the longest supported pattern.
	MaxSteps = 64

	DefaultSteps = 16
	DefaultHits  = 8
)

// Engine holds one channel's Euclidean pattern and playhead. The
// pattern is regenerated only when steps, hits or rotation actually
// change, so Configure can be called every tick at no cost.
type Engine struct {
	steps    int
	hits     int
	rotation int
	current  int

	pattern [MaxSteps]bool
}

// New returns an engine with the default 16-step, 8-hit pattern.
func New() *Engine {
	e := &Engine{}
	e.steps = -1 // force first generate
	e.Configure(DefaultSteps, DefaultHits, 0)
	return e
}

// Configure clamps the parameters (steps 1..64, hits 0..steps,
// rotation 0..steps-1) and regenerates the pattern if any effective
// value changed. A step-count change resets the playhead; otherwise the
// playhead is only wrapped into the new range.
func (e *Engine) Configure(steps, hits, rotation int) {
	newSteps := clampInt(steps, 1, MaxSteps)
	newHits := clampInt(hits, 0, newSteps)
	newRotation := clampInt(rotation, 0, newSteps-1)

	if newSteps == e.steps && newHits == e.hits && newRotation == e.rotation {
		return
	}
	stepsChanged := newSteps != e.steps
	e.steps = newSteps
	e.hits = newHits
	e.rotation = newRotation
	e.generate()

	if stepsChanged || e.current >= e.steps {
		e.current = 0
	}
}

// generate builds the pattern with Bjorklund's algorithm: hits singleton
// [true] sequences and steps-hits singleton [false] sequences are
// repeatedly interleaved until the remainder holds at most one element,
// then flattened and rotated.
func (e *Engine) generate() {
	for i := range e.pattern {
		e.pattern[i] = false
	}
	if e.steps <= 0 || e.hits <= 0 {
		return
	}
	if e.hits >= e.steps {
		for i := 0; i < e.steps; i++ {
			e.pattern[i] = true
		}
		return
	}

	first := make([][]bool, 0, e.hits)
	second := make([][]bool, 0, e.steps-e.hits)
	for i := 0; i < e.hits; i++ {
		first = append(first, []bool{true})
	}
	for i := 0; i < e.steps-e.hits; i++ {
		second = append(second, []bool{false})
	}

	for len(second) > 1 {
		n := len(first)
		if len(second) < n {
			n = len(second)
		}
		for i := 0; i < n; i++ {
			first[i] = append(first[i], second[i]...)
		}
		var remainder [][]bool
		if len(second) > len(first) {
			remainder = second[len(first):]
		} else if len(first) > len(second) {
			remainder = first[len(second):]
			first = first[:len(second)]
		}
		second = remainder
	}

	flat := make([]bool, 0, e.steps)
	for _, seq := range first {
		flat = append(flat, seq...)
	}
	for _, seq := range second {
		flat = append(flat, seq...)
	}

	for i := 0; i < e.steps; i++ {
		e.pattern[i] = flat[(i+e.rotation)%e.steps]
	}
}

// Tick reports whether the current step is a hit, then advances the
// playhead. A degenerate engine (no steps) reports false.
func (e *Engine) Tick() bool {
	if e.steps <= 0 {
		return false
	}
	hit := e.pattern[e.current]
	e.current = (e.current + 1) % e.steps
	return hit
}

// Reset moves the playhead back to step 0 without touching the pattern.
func (e *Engine) Reset() { e.current = 0 }

// Hit reports whether absolute step index i is a hit, independent of
// the playhead. Out-of-range indices report false.
func (e *Engine) Hit(i int) bool {
	if i < 0 || i >= e.steps {
		return false
	}
	return e.pattern[i]
}

// Steps returns the effective (clamped) step count.
func (e *Engine) Steps() int { return e.steps }

// Hits returns the effective (clamped) hit count.
func (e *Engine) Hits() int { return e.hits }

// Rotation returns the effective (clamped) rotation.
func (e *Engine) Rotation() int { return e.rotation }

// CurrentStep returns the playhead position.
func (e *Engine) CurrentStep() int { return e.current }

// Pattern copies the active pattern into a fresh slice, for display and
// testing.
func (e *Engine) Pattern() []bool {
	out := make([]bool, e.steps)
	copy(out, e.pattern[:e.steps])
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

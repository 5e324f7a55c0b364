// Package acid9 implements the ACID-9 interference sequencer: two
// rotating step buffers ("gears") whose sum forms a melody, quantized
// to a scale, with gate/slide/accent derived from interval logic.
package acid9

import (
	"math"
	"math/rand/v2"

	"github.com/timini/wiggleroom/internal/euclid"
)

// MaxGearSteps is the backing capacity of every gear.
const MaxGearSteps = 16

// GearType selects the value domain a gear holds.
type GearType int

const (
	// GearPitch holds semitones 0..24 (gear A).
	GearPitch GearType = iota
	// GearOffset holds semitone offsets -12..+12 (gear B).
	GearOffset
	// GearGate holds 0/1 gate steps.
	GearGate
)

// Gear is a rotating step buffer with a variable active length. The
// backing array always holds MaxGearSteps values so shortening and
// re-lengthening a gear preserves data.
type Gear struct {
	length   int
	typ      GearType
	position int
	data     [MaxGearSteps]int
}

// NewGear returns a gear of the given active length filled with the
// type's default value.
func NewGear(length int, typ GearType) *Gear {
	g := &Gear{typ: typ}
	g.length = clampInt(length, 1, MaxGearSteps)
	for i := range g.data {
		g.data[i] = g.defaultValue()
	}
	return g
}

func (g *Gear) defaultValue() int {
	switch g.typ {
	case GearPitch:
		return 12
	case GearGate:
		return 1
	default:
		return 0
	}
}

func (g *Gear) clampValue(v int) int {
	switch g.typ {
	case GearPitch:
		return clampInt(v, 0, 24)
	case GearOffset:
		return clampInt(v, -12, 12)
	case GearGate:
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}

// Advance moves the playhead one step, wrapping at the active length.
func (g *Gear) Advance() {
	g.position = (g.position + 1) % g.length
}

// Reset rewinds the playhead to step 0.
func (g *Gear) Reset() { g.position = 0 }

// SetPosition jumps the playhead, wrapped into the active length.
func (g *Gear) SetPosition(pos int) {
	g.position = wrapIndex(pos, g.length)
}

// Position returns the playhead step.
func (g *Gear) Position() int { return g.position }

// Length returns the active length.
func (g *Gear) Length() int { return g.length }

// SetLength changes the active length. Steps that become reachable are
// reset to the default value; the playhead wraps if it falls outside.
func (g *Gear) SetLength(length int) {
	old := g.length
	g.length = clampInt(length, 1, MaxGearSteps)
	for i := old; i < g.length; i++ {
		g.data[i] = g.defaultValue()
	}
	if g.position >= g.length {
		g.position = g.position % g.length
	}
}

// Value returns the step under the playhead.
func (g *Gear) Value() int { return g.data[g.position] }

// ValueAt returns the step at index, wrapped into the active length.
func (g *Gear) ValueAt(step int) int {
	return g.data[wrapIndex(step, g.length)]
}

// SetValueAt writes a step, clamped to the gear's value domain.
func (g *Gear) SetValueAt(step, value int) {
	g.data[wrapIndex(step, g.length)] = g.clampValue(value)
}

// Gate reads the playhead step as a boolean, for gate gears.
func (g *Gear) Gate() bool { return g.data[g.position] != 0 }

// Randomize rewrites every active step. Pitch and gate gears draw
// uniformly; offset gears draw from a normal distribution so small
// offsets dominate.
func (g *Gear) Randomize(rng *rand.Rand) {
	for i := 0; i < g.length; i++ {
		switch g.typ {
		case GearPitch:
			g.data[i] = rng.IntN(25)
		case GearOffset:
			v := int(math.Round(rng.NormFloat64() * 4))
			g.data[i] = clampInt(v, -12, 12)
		case GearGate:
			g.data[i] = rng.IntN(2)
		}
	}
}

// SetEuclidean fills the gear with a Euclidean gate pattern of the
// given hit count and length. Steps beyond the new length are zeroed.
func (g *Gear) SetEuclidean(hits, length int) {
	g.length = clampInt(length, 1, MaxGearSteps)
	hits = clampInt(hits, 0, g.length)

	var e euclid.Engine
	e.Configure(g.length, hits, 0)
	for i := 0; i < MaxGearSteps; i++ {
		if i < g.length && e.Hit(i) {
			g.data[i] = 1
		} else {
			g.data[i] = 0
		}
	}
	if g.position >= g.length {
		g.position = g.position % g.length
	}
}

// GearState is the persisted form of a gear. The data array always
// carries the full backing store, not just the active length.
type GearState struct {
	Length   int                `json:"length"`
	Position int                `json:"position"`
	Data     [MaxGearSteps]int  `json:"data"`
}

// State captures the gear for persistence.
func (g *Gear) State() GearState {
	return GearState{Length: g.length, Position: g.position, Data: g.data}
}

// LoadState restores a persisted gear.
func (g *Gear) LoadState(s GearState) {
	g.length = clampInt(s.Length, 1, MaxGearSteps)
	g.position = wrapIndex(s.Position, g.length)
	g.data = s.Data
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

// wrapIndex maps any integer into [0, n).
func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

package acid9

import (
	"math"
	"math/rand/v2"
)

// Scales are 12-bit masks, bit i = semitone i relative to the root.
var Scales = [...]int{
	0b101011010101, // Major (Ionian)
	0b101101010110, // Minor (Aeolian)
	0b101101011010, // Dorian
	0b110101011010, // Phrygian
	0b101011010110, // Lydian
	0b101011011010, // Mixolydian
	0b110101101010, // Locrian
	0b101101010101, // Harmonic Minor
	0b101011010110, // Melodic Minor
	0b101010110101, // Pentatonic Major
	0b100101010010, // Pentatonic Minor
	0b101010101010, // Whole Tone
	0b111111111111, // Chromatic
}

// ScaleNames label the Scales entries in order.
var ScaleNames = [...]string{
	"Major", "Minor", "Dorian", "Phrygian", "Lydian", "Mixolydian",
	"Locrian", "Harmonic Minor", "Melodic Minor", "Pentatonic Major",
	"Pentatonic Minor", "Whole Tone", "Chromatic",
}

// GearBLengths are the selectable gear B lengths. Primes (and near
// primes) keep the two gears out of phase for long stretches.
var GearBLengths = [...]int{3, 5, 7, 9, 11, 13}

// defaultGearA is a simple riff centered around C4.
var defaultGearA = [MaxGearSteps]int{
	0, 4, 7, 4, 0, 4, 9, 7,
	2, 5, 9, 5, 2, 5, 7, 5,
}

// defaultGearB is a gentle 7-step offset variation.
var defaultGearB = [7]int{0, 0, 2, -2, 0, 3, 0}

// Interference couples gear A (the 16-step pitch anchor) with gear B
// (a shorter offset modifier). The output pitch is the quantized sum
// of the two gears; because the lengths differ, the combination drifts
// through a long cycle before repeating.
type Interference struct {
	gearA *Gear
	gearB *Gear

	offset int  // phase offset applied to gear B reads
	frozen bool // freeze gear B rotation

	root        int
	scaleIndex  int
	scaleMask   int
	useScaleBus bool

	quantizedPitch int
	prevPitch      int
	prevPrevPitch  int
	prevGearA      int
	prevGearB      int

	rng *rand.Rand
}

// NewInterference returns an engine with the default riff in gear A
// and the default 7-step offsets in gear B.
func NewInterference() *Interference {
	e := &Interference{
		gearA:          NewGear(16, GearPitch),
		gearB:          NewGear(7, GearOffset),
		scaleMask:      Scales[0],
		quantizedPitch: 12,
		prevPitch:      12,
		prevPrevPitch:  12,
		prevGearA:      12,
	}
	e.SetSeed(rand.Uint32())
	for i := 0; i < MaxGearSteps; i++ {
		e.gearA.SetValueAt(i, defaultGearA[i]+12)
	}
	for i, v := range defaultGearB {
		e.gearB.SetValueAt(i, v)
	}
	return e
}

// SetSeed reseeds the mutation RNG for reproducible runs.
func (e *Interference) SetSeed(seed uint32) {
	e.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// OnClock advances both gears (gear B unless frozen) and recomputes
// the quantized pitch, keeping a two-step pitch history for the logic
// engine.
func (e *Interference) OnClock() {
	e.prevGearA = e.gearA.Value()
	e.prevGearB = e.GearBOffset()

	e.gearA.Advance()
	if !e.frozen {
		e.gearB.Advance()
	}

	raw := e.gearA.Value() + e.GearBOffset()

	e.prevPrevPitch = e.prevPitch
	e.prevPitch = e.quantizedPitch
	e.quantizedPitch = e.quantize(raw)
}

// Reset rewinds both gears and clears the pitch history.
func (e *Interference) Reset() {
	e.gearA.Reset()
	e.gearB.Reset()
	e.prevPitch = 12
	e.prevPrevPitch = 12
	e.quantizedPitch = 12
	e.prevGearA = 12
	e.prevGearB = 0
}

// PitchVoltage returns the quantized pitch as 1V/oct, 0V = C4
// (semitone 12).
func (e *Interference) PitchVoltage() float64 {
	return (float64(e.quantizedPitch) - 12.0) / 12.0
}

// RawPitch returns the unquantized gear sum at the current positions.
func (e *Interference) RawPitch() int {
	return e.gearA.Value() + e.GearBOffset()
}

// QuantizedPitch returns the current pitch in semitones.
func (e *Interference) QuantizedPitch() int { return e.quantizedPitch }

// PrevPitch returns the pitch one tick ago.
func (e *Interference) PrevPitch() int { return e.prevPitch }

// PrevPrevPitch returns the pitch two ticks ago.
func (e *Interference) PrevPrevPitch() int { return e.prevPrevPitch }

// GearAValue returns gear A's step under the playhead.
func (e *Interference) GearAValue() int { return e.gearA.Value() }

// PrevGearAValue returns gear A's value one tick ago.
func (e *Interference) PrevGearAValue() int { return e.prevGearA }

// GearBOffset returns gear B's value at the playhead plus the phase
// offset.
func (e *Interference) GearBOffset() int {
	pos := (e.gearB.Position() + e.offset) % e.gearB.Length()
	return e.gearB.ValueAt(pos)
}

// PrevGearBOffset returns gear B's effective value one tick ago.
func (e *Interference) PrevGearBOffset() int { return e.prevGearB }

// SetGearBLengthIndex selects a length from GearBLengths.
func (e *Interference) SetGearBLengthIndex(idx int) {
	idx = clampInt(idx, 0, len(GearBLengths)-1)
	e.gearB.SetLength(GearBLengths[idx])
}

// GearBLength returns gear B's active length.
func (e *Interference) GearBLength() int { return e.gearB.Length() }

// SetOffset sets the gear B phase offset (wrapped to 0..15).
func (e *Interference) SetOffset(off int) {
	e.offset = wrapIndex(off, MaxGearSteps)
}

// Offset returns the gear B phase offset.
func (e *Interference) Offset() int { return e.offset }

// SetFrozen stops or resumes gear B rotation.
func (e *Interference) SetFrozen(frozen bool) { e.frozen = frozen }

// SetRoot sets the scale root note (0..11).
func (e *Interference) SetRoot(root int) {
	e.root = clampInt(root, 0, 11)
}

// SetScale selects a scale from the built-in table. Ignored while an
// external scale bus is driving the mask.
func (e *Interference) SetScale(idx int) {
	e.scaleIndex = clampInt(idx, 0, len(Scales)-1)
	if !e.useScaleBus {
		e.scaleMask = Scales[e.scaleIndex]
	}
}

// UpdateFromScaleBus reads a polyphonic scale bus: channels 0..11 set
// the scale mask (>0.5V = in scale), channel 15 carries the root as
// V/oct. Fewer than 12 channels falls back to the internal scale.
func (e *Interference) UpdateFromScaleBus(voltages []float64) {
	if len(voltages) < 12 {
		e.useScaleBus = false
		e.scaleMask = Scales[e.scaleIndex]
		return
	}

	e.useScaleBus = true
	mask := 0
	for i := 0; i < 12; i++ {
		if voltages[i] > 0.5 {
			mask |= 1 << i
		}
	}
	e.scaleMask = mask

	if len(voltages) >= 16 {
		root := int(math.Round(voltages[15]*12.0)) % 12
		if root < 0 {
			root += 12
		}
		e.root = root
	}
}

// MutateGearA randomizes gear A's pitches.
func (e *Interference) MutateGearA() { e.gearA.Randomize(e.rng) }

// MutateGearB randomizes gear B's offsets.
func (e *Interference) MutateGearB() { e.gearB.Randomize(e.rng) }

// GearA exposes gear A for display and editing.
func (e *Interference) GearA() *Gear { return e.gearA }

// GearB exposes gear B for display and editing.
func (e *Interference) GearB() *Gear { return e.gearB }

// ScaleMask returns the active 12-bit scale mask.
func (e *Interference) ScaleMask() int { return e.scaleMask }

// Root returns the active root note.
func (e *Interference) Root() int { return e.root }

// UsingScaleBus reports whether an external bus drives the scale.
func (e *Interference) UsingScaleBus() bool { return e.useScaleBus }

// quantize snaps a pitch to the active scale: nearest in-scale
// semitone, searching outward up to a tritone and preferring the lower
// neighbor on ties. Out-of-reach pitches pass through unchanged.
func (e *Interference) quantize(pitch int) int {
	pitch = clampInt(pitch, 0, 36)

	octave := pitch / 12
	note := pitch % 12
	relNote := (note - e.root + 12) % 12

	if (e.scaleMask>>relNote)&1 == 1 {
		return pitch
	}

	for off := 1; off <= 6; off++ {
		lower := (relNote - off + 12) % 12
		upper := (relNote + off) % 12

		if (e.scaleMask>>lower)&1 == 1 {
			// The downward step wraps within the octave rather than
			// borrowing from the one below.
			return octave*12 + (note-off+12)%12
		}
		if (e.scaleMask>>upper)&1 == 1 {
			newNote := note + off
			oct := octave
			if newNote >= 12 {
				newNote -= 12
				oct++
			}
			return oct*12 + newNote
		}
	}
	return pitch
}

// InterferenceState is the persisted form of the engine.
type InterferenceState struct {
	GearA  GearState `json:"gearA"`
	GearB  GearState `json:"gearB"`
	Offset int       `json:"offset"`
}

// State captures the gears and phase offset.
func (e *Interference) State() InterferenceState {
	return InterferenceState{
		GearA:  e.gearA.State(),
		GearB:  e.gearB.State(),
		Offset: e.offset,
	}
}

// LoadState restores a persisted engine.
func (e *Interference) LoadState(s InterferenceState) {
	e.gearA.LoadState(s.GearA)
	e.gearB.LoadState(s.GearB)
	e.offset = s.Offset
}

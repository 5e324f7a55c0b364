// Package truthtable implements the editable N-input/N-output boolean
// logic table at the heart of the Euclogic modules, with snapshot-based
// undo/redo history.
package truthtable

import (
	"math/bits"
	"math/rand/v2"
	"strings"
)

// MaxChannels is the widest supported table (16 states).
const MaxChannels = 4

const maxStates = 1 << MaxChannels

type snapshot [maxStates]uint8

// Table maps every combination of N boolean inputs to an N-bit output
// mask. Entry index = input state (bit i of the index is input channel
// i); entry value = output mask (bit i drives output channel i).
type Table struct {
	channels int
	states   int
	mapping  snapshot

	undo []snapshot
	redo []snapshot

	rng *rand.Rand
}

// New returns an identity (pass-through) table for the given channel
// count, clamped to 2..4, seeded from the process-wide RNG.
func New(channels int) *Table {
	if channels < 2 {
		channels = 2
	}
	if channels > MaxChannels {
		channels = MaxChannels
	}
	t := &Table{
		channels: channels,
		states:   1 << channels,
	}
	t.SetSeed(rand.Uint32())
	t.loadIdentity()
	return t
}

// SetSeed reseeds the randomize/mutate RNG for deterministic tests.
func (t *Table) SetSeed(seed uint32) {
	t.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Channels returns the channel count N.
func (t *Table) Channels() int { return t.channels }

// States returns 2^N.
func (t *Table) States() int { return t.states }

func (t *Table) outMask() uint8 { return uint8(t.states - 1) }

func (t *Table) loadIdentity() {
	for i := 0; i < t.states; i++ {
		t.mapping[i] = uint8(i)
	}
}

// Evaluate packs inputs into a state, looks up the output mask and
// unpacks it into outputs. Only the first N elements of each slice are
// touched.
func (t *Table) Evaluate(inputs []bool, outputs []bool) {
	state := uint8(0)
	for i := 0; i < t.channels && i < len(inputs); i++ {
		if inputs[i] {
			state |= 1 << i
		}
	}
	mask := t.EvaluateState(state)
	for i := 0; i < t.channels && i < len(outputs); i++ {
		outputs[i] = mask>>i&1 != 0
	}
}

// EvaluateState returns the output mask for an input state. An
// out-of-range state yields the no-op mask 0.
func (t *Table) EvaluateState(state uint8) uint8 {
	if int(state) >= t.states {
		return 0
	}
	return t.mapping[state]
}

// Mapping returns the output mask stored for a state, 0 if out of range.
func (t *Table) Mapping(state uint8) uint8 {
	return t.EvaluateState(state)
}

// SetMapping stores an output mask for a state, masked to N bits.
// It does not record history; call PushUndo first if tracking is wanted.
func (t *Table) SetMapping(state, mask uint8) {
	if int(state) < t.states {
		t.mapping[state] = mask & t.outMask()
	}
}

// ToggleBit flips one output bit of one state. Like SetMapping it does
// not record history itself; interactive editors push undo explicitly
// before the first toggle of a gesture.
func (t *Table) ToggleBit(state, bit uint8) {
	if int(state) < t.states && int(bit) < t.channels {
		t.mapping[state] ^= 1 << bit
	}
}

// PushUndo snapshots the current mapping onto the undo stack and drops
// any redo history: a new edit invalidates previously undone futures.
func (t *Table) PushUndo() {
	t.undo = append(t.undo, t.mapping)
	t.redo = t.redo[:0]
}

// Undo restores the most recent snapshot, moving the current mapping to
// the redo stack. It reports false (and changes nothing) when the undo
// stack is empty.
func (t *Table) Undo() bool {
	if len(t.undo) == 0 {
		return false
	}
	t.redo = append(t.redo, t.mapping)
	t.mapping = t.undo[len(t.undo)-1]
	t.undo = t.undo[:len(t.undo)-1]
	return true
}

// Redo reverses the most recent Undo. It reports false (and changes
// nothing) when the redo stack is empty.
func (t *Table) Redo() bool {
	if len(t.redo) == 0 {
		return false
	}
	t.undo = append(t.undo, t.mapping)
	t.mapping = t.redo[len(t.redo)-1]
	t.redo = t.redo[:len(t.redo)-1]
	return true
}

// ClearHistory drops both stacks.
func (t *Table) ClearHistory() {
	t.undo = t.undo[:0]
	t.redo = t.redo[:0]
}

// UndoDepth returns the number of undoable snapshots.
func (t *Table) UndoDepth() int { return len(t.undo) }

// RedoDepth returns the number of redoable snapshots.
func (t *Table) RedoDepth() int { return len(t.redo) }

// Randomize pushes undo, then assigns every entry an independent
// uniform random mask.
func (t *Table) Randomize() {
	t.PushUndo()
	for i := 0; i < t.states; i++ {
		t.mapping[i] = uint8(t.rng.IntN(t.states))
	}
}

// Mutate pushes undo, then flips between 1 and min(3, N) random bits
// across random entries.
func (t *Table) Mutate() {
	t.PushUndo()
	maxFlips := t.channels
	if maxFlips > 3 {
		maxFlips = 3
	}
	flips := 1 + t.rng.IntN(maxFlips)
	for i := 0; i < flips; i++ {
		entry := t.rng.IntN(t.states)
		bit := t.rng.IntN(t.channels)
		t.mapping[entry] ^= 1 << bit
	}
}

// Preset names accepted by LoadPreset.
const (
	PresetPass     = "PASS"
	PresetOr       = "OR"
	PresetAnd      = "AND"
	PresetXor      = "XOR"
	PresetMajority = "MAJORITY"
	PresetNor      = "NOR"
	PresetNand     = "NAND"
	PresetRotate   = "ROTATE"
	PresetInvert   = "INVERT"
)

// PresetNames lists the presets in panel order.
var PresetNames = []string{
	PresetPass, PresetOr, PresetAnd, PresetXor, PresetMajority,
	PresetNor, PresetNand, PresetRotate, PresetInvert,
}

// LoadPreset replaces the whole mapping with a named boolean function,
// pushing undo first. Unknown names report false and leave the table
// untouched.
func (t *Table) LoadPreset(name string) bool {
	all := t.outMask()
	var fill func(state int) uint8
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case PresetPass:
		fill = func(s int) uint8 { return uint8(s) }
	case PresetOr:
		fill = func(s int) uint8 {
			if s > 0 {
				return all
			}
			return 0
		}
	case PresetAnd:
		fill = func(s int) uint8 {
			if s == t.states-1 {
				return all
			}
			return 0
		}
	case PresetXor:
		fill = func(s int) uint8 {
			if bits.OnesCount8(uint8(s))%2 == 1 {
				return all
			}
			return 0
		}
	case PresetMajority:
		fill = func(s int) uint8 {
			if bits.OnesCount8(uint8(s)) >= 2 {
				return all
			}
			return 0
		}
	case PresetNor:
		fill = func(s int) uint8 {
			if s == 0 {
				return all
			}
			return 0
		}
	case PresetNand:
		fill = func(s int) uint8 {
			if s != t.states-1 {
				return all
			}
			return 0
		}
	case PresetRotate:
		n := t.channels
		fill = func(s int) uint8 {
			return uint8((s<<1)|(s>>(n-1))) & all
		}
	case PresetInvert:
		fill = func(s int) uint8 { return ^uint8(s) & all }
	default:
		return false
	}
	t.PushUndo()
	for i := 0; i < t.states; i++ {
		t.mapping[i] = fill(i)
	}
	return true
}

// Serialize copies the live mapping entries (index = input state) for
// persistence.
func (t *Table) Serialize() []uint8 {
	out := make([]uint8, t.states)
	copy(out, t.mapping[:t.states])
	return out
}

// LoadMapping restores a persisted mapping. Extra entries are ignored,
// missing ones keep their current value. History is not recorded.
func (t *Table) LoadMapping(data []uint8) {
	for i := 0; i < t.states && i < len(data); i++ {
		t.mapping[i] = data[i] & t.outMask()
	}
}

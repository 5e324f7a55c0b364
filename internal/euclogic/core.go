// Package euclogic implements the Euclogic sequencer family: N channels
// of Euclidean rhythm generation fed through per-channel probability
// gates and an N-bit truth table, driven by a swing-capable clock
// multiplier/divider. One Core instance backs the 2, 3 and 4 channel
// variants.
package euclogic

import (
	"sync/atomic"

	"github.com/timini/wiggleroom/internal/clock"
	"github.com/timini/wiggleroom/internal/dsp"
	"github.com/timini/wiggleroom/internal/euclid"
	"github.com/timini/wiggleroom/internal/prob"
	"github.com/timini/wiggleroom/internal/truthtable"
)

const (
	// MaxChannels is the widest variant in the family.
	MaxChannels = 4

	// TriggerPulseDuration is the width of the trigger output pulse.
	TriggerPulseDuration = 1e-3

	// RetrigGapDuration is the forced-low gap inserted when a held gate
	// retriggers, so downstream envelopes see a fresh edge.
	RetrigGapDuration = 0.5e-3

	// GateVoltage is the level of an active gate or trigger output.
	GateVoltage = 10.0
)

// ChannelParams is the per-channel control surface, read once per sample.
type ChannelParams struct {
	Steps      int     // 1..64
	Hits       float64 // 0..64, clamped to Steps after CV
	HitsCV     float64 // volts, +-5V spans +-12 hits
	QuantIndex int     // index into clock.QuantRatios
	ProbA      float64 // 0..1
	ProbACV    float64 // volts, +-10V spans +-1
	ProbB      float64
	ProbBCV    float64
	Retrigger  bool
}

// Params is the module-wide control surface.
type Params struct {
	SpeedIndex   int
	SwingPercent float64

	// Button levels. Edges are detected inside Process.
	Random bool
	Mutate bool
	Undo   bool
	Redo   bool

	Channel [MaxChannels]ChannelParams
}

// Inputs carries the signal-rate input voltages for one sample.
type Inputs struct {
	Clock        float64
	Reset        float64
	Run          float64
	RunConnected bool
}

// ChannelOutputs holds one channel's output voltages after a sample.
type ChannelOutputs struct {
	Gate    float64
	Trigger float64
	LFO     float64
	PreGate float64 // only driven when the variant has pre-logic outputs
}

// Outputs is the full output surface after one Process call.
type Outputs struct {
	Channel     [MaxChannels]ChannelOutputs
	ClockLocked bool
	Running     bool
	Ticked      bool
}

// Core is the shared engine behind the Euclogic variants. All methods
// must be called from the audio goroutine; the Display* accessors are
// the only concurrency-safe entry points.
type Core struct {
	channels   int
	hasPreGate bool

	engines [MaxChannels]*euclid.Engine
	probA   [MaxChannels]*prob.Gate
	probB   [MaxChannels]*prob.Gate
	table   *truthtable.Table
	sched   *clock.Scheduler

	resetTrigger  dsp.SchmittTrigger
	randomTrigger dsp.SchmittTrigger
	mutateTrigger dsp.SchmittTrigger
	undoTrigger   dsp.SchmittTrigger
	redoTrigger   dsp.SchmittTrigger

	quantCounter  [MaxChannels]int
	trigPulse     [MaxChannels]dsp.PulseGenerator
	prevGateHigh  [MaxChannels]bool
	retrigGap     [MaxChannels]float64
	preLogicState [MaxChannels]bool

	// Display state, written by the audio goroutine and read by the UI.
	inputState atomic.Uint32
	gateState  [MaxChannels]atomic.Bool
	preState   [MaxChannels]atomic.Bool
}

// New returns a Core with the given channel count (clamped to 2..4).
// hasPreGate enables the pre-logic gate outputs some variants carry.
func New(channels int, hasPreGate bool) *Core {
	channels = dsp.ClampInt(channels, 2, MaxChannels)
	c := &Core{
		channels:   channels,
		hasPreGate: hasPreGate,
		table:      truthtable.New(channels),
		sched:      clock.NewScheduler(),
	}
	for i := 0; i < channels; i++ {
		c.engines[i] = euclid.New()
		c.probA[i] = prob.New()
		c.probB[i] = prob.New()
	}
	return c
}

// Channels returns the active channel count.
func (c *Core) Channels() int { return c.channels }

// HasPreGate reports whether pre-logic gate outputs are driven.
func (c *Core) HasPreGate() bool { return c.hasPreGate }

// Table exposes the truth table for direct UI edits (ToggleBit and
// friends). Callers own the PushUndo discipline for direct edits.
func (c *Core) Table() *truthtable.Table { return c.table }

// Scheduler exposes the clock scheduler, mainly for persistence.
func (c *Core) Scheduler() *clock.Scheduler { return c.sched }

// Engine returns channel i's Euclidean engine for display. Returns nil
// out of range.
func (c *Core) Engine(i int) *euclid.Engine {
	if i < 0 || i >= c.channels {
		return nil
	}
	return c.engines[i]
}

// SetSeed reseeds every probability gate and the truth table from one
// base seed, for reproducible runs.
func (c *Core) SetSeed(seed uint32) {
	for i := 0; i < c.channels; i++ {
		c.probA[i].SetSeed(seed + uint32(i)*2)
		c.probB[i].SetSeed(seed + uint32(i)*2 + 1)
	}
	c.table.SetSeed(seed + 97)
}

// Reset restores power-on state. The truth table mapping and its
// history survive, matching a hardware reset that keeps patches.
func (c *Core) Reset() {
	for i := 0; i < c.channels; i++ {
		c.engines[i].Reset()
		c.quantCounter[i] = 0
		c.prevGateHigh[i] = false
		c.retrigGap[i] = 0
		c.preLogicState[i] = false
		c.trigPulse[i].Reset()
		c.gateState[i].Store(false)
		c.preState[i].Store(false)
	}
	c.sched.Reset()
	c.inputState.Store(0)
}

// Process advances the module by one sample and returns the output
// voltages. dt is the sample duration in seconds.
func (c *Core) Process(p *Params, in *Inputs, dt float64) Outputs {
	if c.resetTrigger.ProcessDefault(in.Reset) {
		c.Reset()
	}

	if in.RunConnected {
		c.sched.SetRunning(in.Run > dsp.SchmittHigh)
	} else {
		c.sched.SetRunning(true)
	}

	if c.randomTrigger.ProcessDefault(boolV(p.Random)) {
		c.table.Randomize()
	}
	if c.mutateTrigger.ProcessDefault(boolV(p.Mutate)) {
		c.table.Mutate()
	}
	if c.undoTrigger.ProcessDefault(boolV(p.Undo)) {
		c.table.Undo()
	}
	if c.redoTrigger.ProcessDefault(boolV(p.Redo)) {
		c.table.Redo()
	}

	c.sched.SetSpeedIndex(p.SpeedIndex)
	c.sched.SetSwingPercent(p.SwingPercent)

	ticked := c.sched.Process(in.Clock, dt)
	if ticked {
		c.processTick(p)
	}

	var out Outputs
	out.ClockLocked = c.sched.Locked()
	out.Running = c.sched.Running()
	out.Ticked = ticked

	for i := 0; i < c.channels; i++ {
		ch := &out.Channel[i]
		gate := c.gateState[i].Load()

		if c.retrigGap[i] > 0 {
			c.retrigGap[i] -= dt
			ch.Gate = 0
		} else if gate {
			ch.Gate = GateVoltage
		}

		if c.trigPulse[i].Process(dt) {
			ch.Trigger = GateVoltage
		}

		// Unipolar ramp that reaches full scale on the last step.
		steps := c.engines[i].Steps()
		if steps > 1 {
			ch.LFO = float64(c.engines[i].CurrentStep()) / float64(steps-1) * GateVoltage
		}

		if c.hasPreGate && c.preState[i].Load() {
			ch.PreGate = GateVoltage
		}
	}
	return out
}

// processTick runs the per-tick pipeline: quant divider, Euclidean
// step, probability A, truth table, probability B, gate/trigger state.
func (c *Core) processTick(p *Params) {
	for i := 0; i < c.channels; i++ {
		cp := &p.Channel[i]

		div := clock.QuantDivisor(cp.QuantIndex)
		c.quantCounter[i]++
		if c.quantCounter[i] < div {
			c.preLogicState[i] = false
			continue
		}
		c.quantCounter[i] = 0

		steps := dsp.ClampInt(cp.Steps, 1, euclid.MaxSteps)
		hits := int(cp.Hits + cp.HitsCV/5.0*12.0)
		hits = dsp.ClampInt(hits, 0, steps)

		c.engines[i].Configure(steps, hits, 0)
		hit := c.engines[i].Tick()

		probAVal := dsp.Clamp(cp.ProbA+cp.ProbACV/10.0, 0, 1)
		c.preLogicState[i] = hit && c.probA[i].ProcessProb(true, probAVal)
	}

	var inputState uint8
	for i := 0; i < c.channels; i++ {
		c.preState[i].Store(c.preLogicState[i])
		if c.preLogicState[i] {
			inputState |= 1 << i
		}
	}
	c.inputState.Store(uint32(inputState))

	var postLogic [MaxChannels]bool
	c.table.Evaluate(c.preLogicState[:c.channels], postLogic[:c.channels])

	for i := 0; i < c.channels; i++ {
		cp := &p.Channel[i]
		probBVal := dsp.Clamp(cp.ProbB+cp.ProbBCV/10.0, 0, 1)
		final := postLogic[i] && c.probB[i].ProcessProb(true, probBVal)

		if final && (!c.prevGateHigh[i] || cp.Retrigger) {
			c.trigPulse[i].Trigger(TriggerPulseDuration)
		}
		if final && c.prevGateHigh[i] && cp.Retrigger {
			c.retrigGap[i] = RetrigGapDuration
		}

		c.gateState[i].Store(final)
		c.prevGateHigh[i] = final
	}
}

// DisplayInputState returns the truth table input state last published
// by the audio goroutine. Safe to call from any goroutine.
func (c *Core) DisplayInputState() uint8 { return uint8(c.inputState.Load()) }

// DisplayGate reports channel i's published gate state.
func (c *Core) DisplayGate(i int) bool {
	if i < 0 || i >= c.channels {
		return false
	}
	return c.gateState[i].Load()
}

// DisplayPreGate reports channel i's published pre-logic gate state.
func (c *Core) DisplayPreGate(i int) bool {
	if i < 0 || i >= c.channels {
		return false
	}
	return c.preState[i].Load()
}

// State is the persisted form of a Core.
type State struct {
	ClockPeriod float64 `json:"clockPeriod"`
	TruthTable  []int   `json:"truthTable"`
}

// State captures the persistable fields.
func (c *Core) State() State {
	mapping := c.table.Serialize()
	tt := make([]int, len(mapping))
	for i, m := range mapping {
		tt[i] = int(m)
	}
	return State{ClockPeriod: c.sched.Period(), TruthTable: tt}
}

// LoadState restores persisted fields. Short or missing truth table
// data leaves the remaining entries untouched.
func (c *Core) LoadState(s State) {
	c.sched.SetPeriod(s.ClockPeriod)
	if len(s.TruthTable) > 0 {
		mapping := make([]uint8, len(s.TruthTable))
		for i, m := range s.TruthTable {
			mapping[i] = uint8(m)
		}
		c.table.LoadMapping(mapping)
	}
}

func boolV(b bool) float64 {
	if b {
		return 10
	}
	return 0
}

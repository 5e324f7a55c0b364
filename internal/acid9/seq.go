package acid9

import (
	"math/rand/v2"

	"github.com/timini/wiggleroom/internal/dsp"
)

// ClockRatios are the selectable clock division/multiplication ratios.
var ClockRatios = [...]float64{
	1.0 / 8, 1.0 / 6, 1.0 / 4, 1.0 / 3, 1.0 / 2,
	1, // x1
	2, 3, 4, 6, 8,
}

// ClockRatioLabels label ClockRatios in order.
var ClockRatioLabels = [...]string{
	"/8", "/6", "/4", "/3", "/2", "x1", "x2", "x3", "x4", "x6", "x8",
}

// DefaultClockRatioIndex is x1.
const DefaultClockRatioIndex = 5

const (
	slideTime          = 0.05 // slew time constant in seconds
	accentPulseLength  = 1e-3
	clockPulseLength   = 0.01
	defaultClockPeriod = 0.5
)

// Params is the sequencer's control surface, read once per sample.
type Params struct {
	ClockRatioIndex  int
	GearBLengthIndex int
	Offset           int // gear B phase offset, 0..15
	Threshold        int // semitones, for Leap/Step modes

	GateMode   Mode
	GateProb   float64
	SlideMode  Mode
	SlideProb  float64
	AccentMode Mode
	AccentProb float64

	Root       int
	ScaleIndex int

	// UseExpression replaces the slide/accent logic modes with the
	// continuous viscosity/force engine.
	UseExpression bool
	Viscosity     float64
	ForceMode     ForceMode
	ForceDepth    float64

	// Button levels. Edges are detected inside Process.
	MutateA bool
	MutateB bool
}

// DefaultParams returns the power-on control surface.
func DefaultParams() *Params {
	return &Params{
		ClockRatioIndex:  DefaultClockRatioIndex,
		GearBLengthIndex: 2, // length 7
		Threshold:        3,
		GateMode:         ModeAlways,
		GateProb:         1,
		SlideMode:        ModeLeap,
		SlideProb:        0.5,
		AccentMode:       ModeDrop,
		AccentProb:       0.5,
		ForceDepth:       0.5,
	}
}

// Inputs carries the signal-rate input voltages for one sample.
type Inputs struct {
	Clock  float64
	Reset  float64
	VOct   float64
	Freeze float64
	Inject float64

	VOctConnected   bool
	FreezeConnected bool

	// ScaleBus holds the polyphonic scale bus voltages, nil when
	// unconnected.
	ScaleBus []float64
}

// Outputs is the output surface after one Process call.
type Outputs struct {
	Pitch  float64 // 1V/oct, slewed during slides
	Gate   float64
	Accent float64
	Slide  float64

	ClockPulse bool
	Ticked     bool
}

// Seq drives the interference engine from an external clock with
// division and multiplication, evaluates the gate/slide/accent logic
// per tick, and slews the pitch output during slides.
type Seq struct {
	engine *Interference
	logic  *Logic
	expr   *Expression

	clockTrigger  dsp.SchmittTrigger
	resetTrigger  dsp.SchmittTrigger
	injectTrigger dsp.SchmittTrigger
	mutateATrig   dsp.SchmittTrigger
	mutateBTrig   dsp.SchmittTrigger

	accentPulse dsp.PulseGenerator
	clockPulse  dsp.PulseGenerator

	clockDivCounter   int
	timeSinceExtClock float64
	clockPeriod       float64
	prevClockRatioIdx int
	multTicksFired    int

	gateHigh     bool
	slideActive  bool
	accentActive bool
	slideVoltage float64
	targetVolt   float64

	rng *rand.Rand
}

// NewSeq returns a sequencer with default gears and a fresh random
// stream for the probability draws.
func NewSeq() *Seq {
	s := &Seq{
		engine:            NewInterference(),
		logic:             NewLogic(),
		expr:              NewExpression(),
		clockPeriod:       defaultClockPeriod,
		prevClockRatioIdx: DefaultClockRatioIndex,
	}
	s.SetSeed(rand.Uint32())
	return s
}

// SetSeed reseeds both the probability draws and the gear mutation RNG.
func (s *Seq) SetSeed(seed uint32) {
	s.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	s.engine.SetSeed(seed + 1)
}

// Engine exposes the interference engine for display and editing.
func (s *Seq) Engine() *Interference { return s.engine }

// Logic exposes the logic engine, mainly for display.
func (s *Seq) Logic() *Logic { return s.logic }

// Reset restores playheads and logic history. Gear contents survive.
func (s *Seq) Reset() {
	s.engine.Reset()
	s.logic.Reset()
	s.expr.Reset()
	s.gateHigh = false
	s.slideActive = false
	s.accentActive = false
	s.clockDivCounter = 0
	s.timeSinceExtClock = 0
	s.multTicksFired = 0
}

// Process advances the sequencer by one sample.
func (s *Seq) Process(p *Params, in *Inputs, dt float64) Outputs {
	s.engine.SetGearBLengthIndex(p.GearBLengthIndex)
	s.engine.SetOffset(p.Offset)
	s.engine.SetRoot(p.Root)
	s.engine.SetScale(p.ScaleIndex)

	if in.ScaleBus != nil {
		s.engine.UpdateFromScaleBus(in.ScaleBus)
	}

	s.engine.SetFrozen(in.FreezeConnected && in.Freeze > dsp.SchmittHigh)

	if s.mutateATrig.ProcessDefault(buttonV(p.MutateA)) {
		s.engine.MutateGearA()
	}
	if s.mutateBTrig.ProcessDefault(buttonV(p.MutateB)) {
		s.engine.MutateGearB()
	}
	if s.injectTrigger.ProcessDefault(in.Inject) {
		s.engine.MutateGearB()
	}

	if s.resetTrigger.ProcessDefault(in.Reset) {
		s.Reset()
	}

	ratioIdx := dsp.ClampInt(p.ClockRatioIndex, 0, len(ClockRatios)-1)
	ratio := ClockRatios[ratioIdx]
	if ratioIdx != s.prevClockRatioIdx {
		s.clockDivCounter = 0
		s.timeSinceExtClock = 0
		s.multTicksFired = 0
		s.prevClockRatioIdx = ratioIdx
	}

	extTick := s.clockTrigger.ProcessDefault(in.Clock)
	if extTick {
		if s.timeSinceExtClock > 0.001 {
			s.clockPeriod = s.timeSinceExtClock
		}
		s.timeSinceExtClock = 0
		s.multTicksFired = 0
	} else {
		s.timeSinceExtClock += dt
	}

	ticked := false
	switch {
	case ratio < 1:
		// Division: advance every Nth external clock.
		if extTick {
			divisor := int(1/ratio + 0.5)
			s.clockDivCounter++
			if s.clockDivCounter >= divisor {
				s.clockDivCounter = 0
				s.advance(p, in)
				ticked = true
			}
		}
	case ratio == 1:
		if extTick {
			s.advance(p, in)
			ticked = true
		}
	default:
		// Multiplication: the external edge fires the first tick, then
		// intermediate ticks follow from the measured period.
		multiplier := int(ratio + 0.5)
		if extTick {
			s.advance(p, in)
			s.multTicksFired = 1
			ticked = true
		} else if s.clockPeriod > 0.001 && multiplier > 1 {
			innerPeriod := s.clockPeriod / float64(multiplier)
			expected := int(s.timeSinceExtClock/innerPeriod) + 1
			for s.multTicksFired < expected && s.multTicksFired < multiplier {
				s.advance(p, in)
				s.multTicksFired++
				ticked = true
			}
		}
	}

	if s.slideActive {
		s.slideVoltage = dsp.SlewExp(s.slideVoltage, s.targetVolt, dt, slideTime)
	} else {
		s.slideVoltage = s.targetVolt
	}

	var out Outputs
	out.Pitch = s.slideVoltage
	if s.gateHigh {
		out.Gate = 10
	}
	if s.accentPulse.Process(dt) {
		out.Accent = 10
	}
	if s.slideActive {
		out.Slide = 10
	}
	out.ClockPulse = s.clockPulse.Process(dt)
	out.Ticked = ticked
	return out
}

// advance runs one sequencer tick: rotate the gears, update the logic
// state, and decide the gate, slide and accent for the new step.
func (s *Seq) advance(p *Params, in *Inputs) {
	s.engine.OnClock()

	s.logic.Update(
		s.engine.QuantizedPitch(),
		s.engine.PrevPitch(),
		s.engine.PrevPrevPitch(),
		s.engine.GearAValue(),
		s.engine.PrevGearAValue(),
		s.engine.GearBOffset(),
		s.engine.PrevGearBOffset(),
	)

	s.gateHigh = s.logic.EvaluateWithProb(p.GateMode, p.Threshold, p.GateProb, s.rng.Float64())

	if p.UseExpression {
		s.expr.SetViscosity(p.Viscosity)
		s.expr.SetForceMode(p.ForceMode)
		s.expr.SetForceDepth(p.ForceDepth)
		s.expr.Update(s.engine.QuantizedPitch(), s.engine.PrevPitch())
		s.slideActive = s.expr.Slide()
		s.accentActive = s.expr.Accent()
	} else {
		s.slideActive = s.logic.EvaluateWithProb(p.SlideMode, p.Threshold, p.SlideProb, s.rng.Float64())
		s.accentActive = s.logic.EvaluateWithProb(p.AccentMode, p.Threshold, p.AccentProb, s.rng.Float64())
	}

	s.targetVolt = s.engine.PitchVoltage()
	if in.VOctConnected {
		s.targetVolt += in.VOct
	}

	if s.accentActive && s.gateHigh {
		s.accentPulse.Trigger(accentPulseLength)
	}
	s.clockPulse.Trigger(clockPulseLength)
}

func buttonV(b bool) float64 {
	if b {
		return 10
	}
	return 0
}

// SeqState is the persisted form of a sequencer.
type SeqState struct {
	Engine InterferenceState `json:"engine"`
}

// State captures the persistable fields.
func (s *Seq) State() SeqState {
	return SeqState{Engine: s.engine.State()}
}

// LoadState restores persisted fields.
func (s *Seq) LoadState(st SeqState) {
	s.engine.LoadState(st.Engine)
}

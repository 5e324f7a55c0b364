// Package wiggleroom is a virtual Eurorack row: a master pulse clock
// driving a Euclidean gate/logic module and an interference melodic
// sequencer, sonified through small monitor voices. The root package
// exposes the rack, realtime playback, offline rendering and JSON
// persistence; the module engines live under internal/.
package wiggleroom

import (
	"sync"

	"github.com/timini/wiggleroom/internal/acid9"
	"github.com/timini/wiggleroom/internal/clock"
	"github.com/timini/wiggleroom/internal/effects"
	"github.com/timini/wiggleroom/internal/euclogic"
	"github.com/timini/wiggleroom/internal/voice"
)

// Module is one virtual module in the rack, stepped once per audio
// sample. Gate outputs follow the 0/10 V convention with Schmitt
// thresholds at 0.1/1.0 V.
type Module interface {
	Step(dt float64)
}

// Event carries a module event out of the audio thread.
type Event struct {
	Kind    int
	Channel int     // gate channel for EventGate
	Pitch   float64 // 1 V/oct, for EventNote
	Gate    bool
	Accent  bool
	Slide   bool
}

// Event kinds.
const (
	EventClockTick int = iota
	EventGate
	EventNote
)

// Option configures a Rack (and the Player that owns one).
type Option func(*rackConfig)

type rackConfig struct {
	bpm      float64
	channels int
	preGates bool
	seed     uint32
	swing    float64
	preset   string
	delayWet float64
}

func defaultRackConfig() rackConfig {
	return rackConfig{
		bpm:      120,
		channels: 4,
		swing:    50,
	}
}

// WithBPM sets the master clock tempo.
func WithBPM(bpm float64) Option {
	return func(cfg *rackConfig) { cfg.bpm = bpm }
}

// WithChannels sets the Euclogic channel count (2..4).
func WithChannels(n int) Option {
	return func(cfg *rackConfig) { cfg.channels = n }
}

// WithPreGates enables the pre-logic gate outputs on the Euclogic
// module.
func WithPreGates(enabled bool) Option {
	return func(cfg *rackConfig) { cfg.preGates = enabled }
}

// WithSeed seeds every random source in the rack for reproducible
// output.
func WithSeed(seed uint32) Option {
	return func(cfg *rackConfig) { cfg.seed = seed }
}

// WithSwing sets the Euclogic swing percentage (50 = even).
func WithSwing(pct float64) Option {
	return func(cfg *rackConfig) { cfg.swing = pct }
}

// WithTablePreset loads a named truth-table preset at startup.
func WithTablePreset(name string) Option {
	return func(cfg *rackConfig) { cfg.preset = name }
}

// WithDelay sets the master-bus delay mix (0 = dry). The delay time
// follows the clock tempo.
func WithDelay(wet float64) Option {
	return func(cfg *rackConfig) { cfg.delayWet = wet }
}

// eucModule adapts the Euclogic core to the rack's Module contract.
type eucModule struct {
	core   *euclogic.Core
	params euclogic.Params
	in     euclogic.Inputs
	out    euclogic.Outputs
}

func (m *eucModule) Step(dt float64) {
	m.out = m.core.Process(&m.params, &m.in, dt)
}

// acidModule adapts the melodic sequencer to the Module contract.
type acidModule struct {
	seq    *acid9.Seq
	params acid9.Params
	in     acid9.Inputs
	out    acid9.Outputs
}

func (m *acidModule) Step(dt float64) {
	m.out = m.seq.Process(&m.params, &m.in, dt)
}

// Rack owns the clock source, the two sequencer modules and the
// monitor voices, and renders them into a stereo stream. All methods
// lock internally; Render may run on the audio goroutine while the
// control surface is edited from another.
type Rack struct {
	mu         sync.Mutex
	sampleRate int

	clk     *clock.PulseClock
	euc     *eucModule
	acid    *acidModule
	modules []Module

	acidVoice *voice.Acid
	blips     []*voice.Blip
	prevTrig  []bool
	bus       *effects.Bus

	acidLevel float64
	blipLevel float64

	// One-shot button levels, consumed by the next frame.
	pressRandom  bool
	pressMutate  bool
	pressUndo    bool
	pressRedo    bool
	pressMutateA bool
	pressMutateB bool
	pressInject  bool
	pressReset   bool

	onEvent func(Event)
}

// blipFreqs assigns a pitch per Euclogic channel, highest first.
var blipFreqs = [euclogic.MaxChannels]float64{1760, 1320, 880, 660}

// NewRack builds a rack at the given sample rate.
func NewRack(sampleRate int, opts ...Option) *Rack {
	cfg := defaultRackConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	euc := euclogic.New(cfg.channels, cfg.preGates)
	if cfg.seed != 0 {
		euc.SetSeed(cfg.seed)
	}
	if cfg.preset != "" {
		euc.Table().LoadPreset(cfg.preset)
	}

	acid := acid9.NewSeq()
	if cfg.seed != 0 {
		acid.SetSeed(cfg.seed + 1)
	}

	eucParams := euclogic.Params{
		SpeedIndex:   clock.DefaultSpeedIndex,
		SwingPercent: cfg.swing,
	}
	for i := range eucParams.Channel {
		eucParams.Channel[i] = euclogic.ChannelParams{
			Steps: 16,
			Hits:  float64(4 - i),
			ProbA: 1,
			ProbB: 1,
		}
	}

	r := &Rack{
		sampleRate: sampleRate,
		clk:        clock.NewPulseClock(cfg.bpm),
		euc:        &eucModule{core: euc, params: eucParams},
		acid:       &acidModule{seq: acid, params: *acid9.DefaultParams()},
		acidVoice:  voice.NewAcid(float64(sampleRate)),
		bus:        effects.NewBus(sampleRate),
		acidLevel:  0.5,
		blipLevel:  0.25,
		blips:      make([]*voice.Blip, euc.Channels()),
		prevTrig:   make([]bool, euc.Channels()),
	}
	r.modules = []Module{r.euc, r.acid}
	for i := range r.blips {
		r.blips[i] = voice.NewBlip(float64(sampleRate), blipFreqs[i])
	}
	r.bus.SetWet(cfg.delayWet)
	r.bus.SyncToPeriod(r.clk.Period())
	return r
}

// SampleRate returns the rack's sample rate.
func (r *Rack) SampleRate() int { return r.sampleRate }

// Euclogic exposes the gate module engine. Use only between Render
// calls or from the audio goroutine.
func (r *Rack) Euclogic() *euclogic.Core { return r.euc.core }

// ACID9 exposes the melodic sequencer engine. Same caveat as Euclogic.
func (r *Rack) ACID9() *acid9.Seq { return r.acid.seq }

// SetBPM changes the master clock tempo and re-syncs the bus delay.
func (r *Rack) SetBPM(bpm float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clk.SetBPM(bpm)
	r.bus.SyncToPeriod(r.clk.Period())
}

// SetDelayWet sets the master-bus delay mix.
func (r *Rack) SetDelayWet(wet float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus.SetWet(wet)
}

// BPM returns the master clock tempo.
func (r *Rack) BPM() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clk.BPM()
}

// EuclogicParams returns a copy of the gate module's control surface.
func (r *Rack) EuclogicParams() euclogic.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.euc.params
}

// SetEuclogicParams replaces the gate module's control surface.
func (r *Rack) SetEuclogicParams(p euclogic.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.euc.params = p
}

// ACID9Params returns a copy of the melodic sequencer's control
// surface.
func (r *Rack) ACID9Params() acid9.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acid.params
}

// SetACID9Params replaces the melodic sequencer's control surface.
func (r *Rack) SetACID9Params(p acid9.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acid.params = p
}

// SetLevels sets the monitor mix levels for the melodic voice and the
// gate blips.
func (r *Rack) SetLevels(acidLevel, blipLevel float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acidLevel = acidLevel
	r.blipLevel = blipLevel
}

// Button presses. Each holds the button high for one sample on the
// next rendered frame; the modules detect the edge themselves.

func (r *Rack) PressRandom() { r.press(&r.pressRandom) }
func (r *Rack) PressMutate() { r.press(&r.pressMutate) }
func (r *Rack) PressUndo()   { r.press(&r.pressUndo) }
func (r *Rack) PressRedo()   { r.press(&r.pressRedo) }

// PressMutateA mutates the melodic sequencer's pitch gear.
func (r *Rack) PressMutateA() { r.press(&r.pressMutateA) }

// PressMutateB mutates the melodic sequencer's offset gear.
func (r *Rack) PressMutateB() { r.press(&r.pressMutateB) }

// PressInject randomizes the offset gear from the inject input.
func (r *Rack) PressInject() { r.press(&r.pressInject) }

// PressReset pulses the reset input of both modules.
func (r *Rack) PressReset() { r.press(&r.pressReset) }

func (r *Rack) press(flag *bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*flag = true
}

// SetEventFunc installs a callback invoked from the render loop on
// clock ticks, gate triggers and notes. The callback runs on the
// audio goroutine; keep it brief and non-blocking.
func (r *Rack) SetEventFunc(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvent = fn
}

// Outputs returns the module outputs of the last rendered frame.
func (r *Rack) Outputs() (euclogic.Outputs, acid9.Outputs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.euc.out, r.acid.out
}

// Render fills dst with interleaved stereo samples. It implements the
// audio bridge's Renderer contract.
func (r *Rack) Render(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		l, rr := r.renderFrame()
		dst[i] = l
		dst[i+1] = rr
	}
}

// RenderFrame renders a single stereo frame.
func (r *Rack) RenderFrame() (left, right float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderFrame()
}

func (r *Rack) renderFrame() (left, right float32) {
	dt := 1 / float64(r.sampleRate)
	clockV := r.clk.Process(dt)

	r.euc.params.Random = r.pressRandom
	r.euc.params.Mutate = r.pressMutate
	r.euc.params.Undo = r.pressUndo
	r.euc.params.Redo = r.pressRedo
	r.euc.in.Clock = clockV
	r.euc.in.Reset = buttonLevel(r.pressReset)

	r.acid.params.MutateA = r.pressMutateA
	r.acid.params.MutateB = r.pressMutateB
	r.acid.in.Clock = clockV
	r.acid.in.Reset = buttonLevel(r.pressReset)
	r.acid.in.Inject = buttonLevel(r.pressInject)

	r.pressRandom = false
	r.pressMutate = false
	r.pressUndo = false
	r.pressRedo = false
	r.pressMutateA = false
	r.pressMutateB = false
	r.pressInject = false
	r.pressReset = false

	for _, m := range r.modules {
		m.Step(dt)
	}
	eucOut := r.euc.out
	acidOut := r.acid.out

	var blipSum float64
	for i := range r.blips {
		high := eucOut.Channel[i].Trigger > 1
		if high && !r.prevTrig[i] {
			r.blips[i].Trigger()
			r.emit(Event{Kind: EventGate, Channel: i})
		}
		r.prevTrig[i] = high
		blipSum += r.blips[i].Process()
	}

	acidSample := r.acidVoice.Process(acidOut.Pitch, acidOut.Gate, acidOut.Accent)

	if eucOut.Ticked {
		r.emit(Event{Kind: EventClockTick})
	}
	if acidOut.Ticked {
		// Report the quantized target pitch, not the slewed output.
		r.emit(Event{
			Kind:   EventNote,
			Pitch:  r.acid.seq.Engine().PitchVoltage(),
			Gate:   acidOut.Gate > 1,
			Accent: acidOut.Accent > 1,
			Slide:  acidOut.Slide > 1,
		})
	}

	mono := r.acidLevel*acidSample + r.blipLevel*blipSum
	return r.bus.Process(mono)
}

// emit runs under r.mu.
func (r *Rack) emit(ev Event) {
	if r.onEvent != nil {
		r.onEvent(ev)
	}
}

func buttonLevel(pressed bool) float64 {
	if pressed {
		return 10
	}
	return 0
}

// Reset rewinds the clock and both modules without touching the
// control surface or the truth table mapping.
func (r *Rack) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clk.Reset()
	r.euc.core.Reset()
	r.acid.seq.Reset()
	r.acidVoice.Reset()
	r.bus.Reset()
	for i := range r.prevTrig {
		r.prevTrig[i] = false
	}
}

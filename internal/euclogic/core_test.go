package euclogic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRate = 48000.0

// tickRun drives the core with a pulse-train clock (one period lead-in,
// then edges every period) and returns the Outputs captured on each
// tick sample.
func tickRun(c *Core, p *Params, period float64, edges int) []Outputs {
	dt := 1.0 / testRate
	periodSamples := int(period * testRate)
	total := periodSamples * (edges + 1)

	var ticks []Outputs
	for i := 0; i < total; i++ {
		in := Inputs{}
		if i >= periodSamples && (i-periodSamples)%periodSamples == 0 {
			in.Clock = 10
		}
		out := c.Process(p, &in, dt)
		if out.Ticked {
			ticks = append(ticks, out)
		}
	}
	return ticks
}

func basicParams() *Params {
	p := &Params{SpeedIndex: 8, SwingPercent: 50}
	for i := range p.Channel {
		p.Channel[i] = ChannelParams{Steps: 16, Hits: 8, ProbA: 1, ProbB: 1}
	}
	return p
}

func TestTresilloGateSequence(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 8, Hits: 3, ProbA: 1, ProbB: 1}

	ticks := tickRun(c, p, 0.5, 8)
	require.Len(t, ticks, 8)

	want := []bool{true, false, false, true, false, false, true, false}
	for i, out := range ticks {
		require.Equal(t, want[i], out.Channel[0].Gate > 5, "tick %d", i)
	}
}

func TestZeroProbabilitySilencesChannel(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 8, Hits: 3, ProbA: 0, ProbB: 1}

	for _, out := range tickRun(c, p, 0.5, 8) {
		require.Zero(t, out.Channel[0].Gate)
		require.Zero(t, out.Channel[0].Trigger)
	}
}

func TestTriggerPulseWidth(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 4, Hits: 4, ProbA: 1, ProbB: 1}

	dt := 1.0 / testRate
	lead := int(0.5 * testRate)
	high := 0
	sawTick := false
	for i := 0; i < lead+100; i++ {
		in := Inputs{}
		if i == lead {
			in.Clock = 10
		}
		out := c.Process(p, &in, dt)
		if out.Ticked {
			sawTick = true
		}
		if sawTick && out.Channel[0].Trigger > 5 {
			high++
		}
	}
	require.True(t, sawTick)
	require.InDelta(t, testRate*TriggerPulseDuration, float64(high), 2)
}

func TestRetriggerInsertsGap(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 1, Hits: 1, ProbA: 1, ProbB: 1, Retrigger: true}

	dt := 1.0 / testRate
	periodSamples := int(0.1 * testRate)
	var gates []float64
	ticksSeen := 0
	for i := 0; i < periodSamples*4; i++ {
		in := Inputs{}
		if i%periodSamples == periodSamples-1 {
			in.Clock = 10
		}
		out := c.Process(p, &in, dt)
		if out.Ticked {
			ticksSeen++
		}
		if ticksSeen >= 2 {
			gates = append(gates, out.Channel[0].Gate)
		}
	}
	require.GreaterOrEqual(t, ticksSeen, 2)

	// Right after the second tick the gate drops for the retrig gap,
	// then comes back up.
	gapSamples := 0
	for _, g := range gates {
		if g > 5 {
			break
		}
		gapSamples++
	}
	require.InDelta(t, testRate*RetrigGapDuration, float64(gapSamples), 2)
	require.Greater(t, gates[gapSamples], 5.0, "gate did not re-raise after the gap")
}

func TestNoRetriggerKeepsGateHeld(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 1, Hits: 1, ProbA: 1, ProbB: 1}

	ticks := tickRun(c, p, 0.1, 6)
	require.GreaterOrEqual(t, len(ticks), 4)

	// The trigger fires on the first tick only; the gate stays high.
	for i, out := range ticks {
		require.Greater(t, out.Channel[0].Gate, 5.0, "tick %d", i)
		if i > 0 {
			require.Zero(t, out.Channel[0].Trigger, "tick %d retriggered", i)
		}
	}
}

func TestQuantDividerSlowsChannel(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 2, Hits: 2, ProbA: 1, ProbB: 1, QuantIndex: 1} // /2

	ticks := tickRun(c, p, 0.1, 8)
	require.Len(t, ticks, 8)

	// The channel only advances every second master tick; off ticks
	// clear its pre-logic state so the gate drops.
	var pattern []bool
	for _, out := range ticks {
		pattern = append(pattern, out.Channel[0].Gate > 5)
	}
	require.Equal(t, []bool{false, true, false, true, false, true, false, true}, pattern)
}

func TestLFORampReachesFullScale(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 4, Hits: 0, ProbA: 1, ProbB: 1}

	ticks := tickRun(c, p, 0.1, 4)
	require.Len(t, ticks, 4)

	// CurrentStep after each tick: 1,2,3,0 over steps-1=3.
	want := []float64{10.0 / 3, 20.0 / 3, 10, 0}
	for i, out := range ticks {
		require.InDelta(t, want[i], out.Channel[0].LFO, 1e-9, "tick %d", i)
	}
}

func TestRandomButtonEdgeAndUndo(t *testing.T) {
	c := New(4, false)
	c.SetSeed(7)
	p := basicParams()

	before := c.Table().Serialize()
	dt := 1.0 / testRate

	// Held button is a single edge: one randomize, not one per sample.
	p.Random = true
	for i := 0; i < 10; i++ {
		c.Process(p, &Inputs{}, dt)
	}
	p.Random = false
	c.Process(p, &Inputs{}, dt)

	require.Equal(t, 1, c.Table().UndoDepth())

	p.Undo = true
	c.Process(p, &Inputs{}, dt)
	require.Equal(t, before, c.Table().Serialize())
}

func TestResetInputRestoresPlayheads(t *testing.T) {
	c := New(2, false)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 8, Hits: 3, ProbA: 1, ProbB: 1}

	tickRun(c, p, 0.5, 3)
	require.NotZero(t, c.Engine(0).CurrentStep())

	dt := 1.0 / testRate
	c.Process(p, &Inputs{Reset: 10}, dt)
	require.Zero(t, c.Engine(0).CurrentStep())
	require.False(t, c.Scheduler().Locked())
}

func TestRunInputGatesTicks(t *testing.T) {
	c := New(2, false)
	p := basicParams()

	dt := 1.0 / testRate
	periodSamples := int(0.1 * testRate)
	ticks := 0
	for i := 0; i < periodSamples*8; i++ {
		in := Inputs{RunConnected: true, Run: 0}
		if i%periodSamples == 0 {
			in.Clock = 10
		}
		out := c.Process(p, &in, dt)
		if out.Ticked {
			ticks++
		}
	}
	require.Zero(t, ticks, "ticked while run input held low")
}

func TestDisplayStatePublication(t *testing.T) {
	c := New(2, true)
	p := basicParams()
	p.Channel[0] = ChannelParams{Steps: 1, Hits: 1, ProbA: 1, ProbB: 1}
	p.Channel[1] = ChannelParams{Steps: 1, Hits: 0, ProbA: 1, ProbB: 1}

	ticks := tickRun(c, p, 0.1, 2)
	require.NotEmpty(t, ticks)

	require.Equal(t, uint8(0b01), c.DisplayInputState())
	require.True(t, c.DisplayGate(0))
	require.False(t, c.DisplayGate(1))
	require.True(t, c.DisplayPreGate(0))
	require.Greater(t, ticks[len(ticks)-1].Channel[0].PreGate, 5.0)
}

func TestStateRoundTrip(t *testing.T) {
	c := New(4, false)
	c.Table().LoadPreset("XOR")
	c.Scheduler().SetPeriod(0.25)

	raw, err := json.Marshal(c.State())
	require.NoError(t, err)

	var s State
	require.NoError(t, json.Unmarshal(raw, &s))

	c2 := New(4, false)
	c2.LoadState(s)
	require.Equal(t, c.Table().Serialize(), c2.Table().Serialize())
	require.InDelta(t, 0.25, c2.Scheduler().Period(), 1e-12)
}

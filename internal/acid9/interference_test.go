package acid9

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterferenceDefaults(t *testing.T) {
	e := NewInterference()
	require.Equal(t, 16, e.GearA().Length())
	require.Equal(t, 7, e.GearBLength())
	require.Equal(t, 12, e.QuantizedPitch())

	// Gear A carries the default riff shifted up an octave.
	require.Equal(t, 12, e.GearA().ValueAt(0))
	require.Equal(t, 16, e.GearA().ValueAt(1))
	require.Equal(t, 19, e.GearA().ValueAt(2))

	require.Equal(t, 2, e.GearB().ValueAt(2))
	require.Equal(t, -2, e.GearB().ValueAt(3))
}

func TestInterferenceClockAdvancesGears(t *testing.T) {
	e := NewInterference()
	e.SetScale(len(Scales) - 1) // chromatic: no quantization

	e.OnClock()
	require.Equal(t, 1, e.GearA().Position())
	require.Equal(t, 1, e.GearB().Position())

	// Position 1: gear A = 16, gear B = 0.
	require.Equal(t, 16, e.QuantizedPitch())
	require.Equal(t, 12, e.PrevPitch())
}

func TestInterferenceFreezeStopsGearB(t *testing.T) {
	e := NewInterference()
	e.SetFrozen(true)
	e.OnClock()
	e.OnClock()
	require.Equal(t, 2, e.GearA().Position())
	require.Equal(t, 0, e.GearB().Position())
}

func TestInterferenceOffsetShiftsGearBRead(t *testing.T) {
	e := NewInterference()
	require.Equal(t, 0, e.GearBOffset())
	e.SetOffset(2)
	require.Equal(t, 2, e.GearBOffset()) // reads gearB[2]
}

func TestInterferencePitchHistory(t *testing.T) {
	e := NewInterference()
	e.SetScale(len(Scales) - 1)
	e.OnClock() // pitch 16
	e.OnClock() // pitch 21 (gear A 19 + gear B 2)
	require.Equal(t, 21, e.QuantizedPitch())
	require.Equal(t, 16, e.PrevPitch())
	require.Equal(t, 12, e.PrevPrevPitch())
}

func TestQuantizePassesInScaleNotes(t *testing.T) {
	e := NewInterference()
	e.SetScale(0)
	// The major mask keeps semitones 0,2,4,6,7,9,11.
	for _, p := range []int{12, 14, 16, 19, 23, 24} {
		require.Equal(t, p, e.quantize(p), "pitch %d", p)
	}
}

func TestQuantizeSnapsAndPrefersLower(t *testing.T) {
	e := NewInterference()
	e.SetScale(0)

	// C#4 sits between two in-scale neighbors; the lower one wins.
	require.Equal(t, 12, e.quantize(13))
	// D#4 snaps down to D4.
	require.Equal(t, 14, e.quantize(15))
}

func TestQuantizeClampsRange(t *testing.T) {
	e := NewInterference()
	e.SetScale(len(Scales) - 1)
	require.Equal(t, 36, e.quantize(99))
	require.Equal(t, 0, e.quantize(-5))
}

func TestQuantizeRootShiftsScale(t *testing.T) {
	e := NewInterference()
	e.SetScale(0)
	e.SetRoot(1)
	// With root C#, C#4 (13) becomes scale degree 0 and passes through.
	require.Equal(t, 13, e.quantize(13))
}

func TestScaleBusOverridesScale(t *testing.T) {
	e := NewInterference()
	e.SetScale(0)

	// 12-channel bus with only C and G active.
	bus := make([]float64, 12)
	bus[0] = 10
	bus[7] = 10
	e.UpdateFromScaleBus(bus)
	require.True(t, e.UsingScaleBus())
	require.Equal(t, 0b000010000001, e.ScaleMask())

	// Fewer than 12 channels falls back to the internal scale.
	e.UpdateFromScaleBus(bus[:4])
	require.False(t, e.UsingScaleBus())
	require.Equal(t, Scales[0], e.ScaleMask())
}

func TestScaleBusRootChannel(t *testing.T) {
	e := NewInterference()
	bus := make([]float64, 16)
	for i := 0; i < 12; i++ {
		bus[i] = 10
	}
	bus[15] = 2.0 / 12 // D as V/oct
	e.UpdateFromScaleBus(bus)
	require.Equal(t, 2, e.Root())

	bus[15] = -10.0 / 12 // negative voltages wrap into 0..11
	e.UpdateFromScaleBus(bus)
	require.Equal(t, 2, e.Root())
}

func TestPitchVoltageCentersOnC4(t *testing.T) {
	e := NewInterference()
	require.InDelta(t, 0.0, e.PitchVoltage(), 1e-9)

	e.SetScale(len(Scales) - 1)
	e.OnClock() // pitch 16
	require.InDelta(t, 4.0/12, e.PitchVoltage(), 1e-9)
}

func TestMutateIsDeterministicPerSeed(t *testing.T) {
	a := NewInterference()
	b := NewInterference()
	a.SetSeed(11)
	b.SetSeed(11)
	a.MutateGearA()
	b.MutateGearA()
	for i := 0; i < 16; i++ {
		require.Equal(t, a.GearA().ValueAt(i), b.GearA().ValueAt(i))
	}
}

func TestInterferenceStateRoundTrip(t *testing.T) {
	e := NewInterference()
	e.SetSeed(5)
	e.MutateGearA()
	e.MutateGearB()
	e.SetOffset(3)
	e.OnClock()

	raw, err := json.Marshal(e.State())
	require.NoError(t, err)

	var s InterferenceState
	require.NoError(t, json.Unmarshal(raw, &s))

	e2 := NewInterference()
	e2.LoadState(s)
	require.Equal(t, e.GearA().Position(), e2.GearA().Position())
	require.Equal(t, e.GearBLength(), e2.GearBLength())
	for i := 0; i < 16; i++ {
		require.Equal(t, e.GearA().ValueAt(i), e2.GearA().ValueAt(i))
	}
	require.Equal(t, 3, e2.offset)
}

package acid9

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGearDefaults(t *testing.T) {
	pitch := NewGear(16, GearPitch)
	offset := NewGear(7, GearOffset)
	gate := NewGear(8, GearGate)

	for i := 0; i < 16; i++ {
		require.Equal(t, 12, pitch.ValueAt(i))
	}
	for i := 0; i < 7; i++ {
		require.Equal(t, 0, offset.ValueAt(i))
	}
	for i := 0; i < 8; i++ {
		require.Equal(t, 1, gate.ValueAt(i))
	}
}

func TestGearAdvanceWraps(t *testing.T) {
	g := NewGear(3, GearPitch)
	require.Equal(t, 0, g.Position())
	g.Advance()
	g.Advance()
	g.Advance()
	require.Equal(t, 0, g.Position())
}

func TestGearValueClamping(t *testing.T) {
	pitch := NewGear(4, GearPitch)
	pitch.SetValueAt(0, 99)
	pitch.SetValueAt(1, -5)
	require.Equal(t, 24, pitch.ValueAt(0))
	require.Equal(t, 0, pitch.ValueAt(1))

	offset := NewGear(4, GearOffset)
	offset.SetValueAt(0, 40)
	offset.SetValueAt(1, -40)
	require.Equal(t, 12, offset.ValueAt(0))
	require.Equal(t, -12, offset.ValueAt(1))

	gate := NewGear(4, GearGate)
	gate.SetValueAt(0, 7)
	gate.SetValueAt(1, 0)
	require.Equal(t, 1, gate.ValueAt(0))
	require.Equal(t, 0, gate.ValueAt(1))
}

func TestGearSetLengthInitializesNewSteps(t *testing.T) {
	g := NewGear(4, GearPitch)
	for i := 0; i < 4; i++ {
		g.SetValueAt(i, i)
	}
	g.SetLength(2)
	g.SetValueAt(0, 20)

	// Re-lengthening resets the newly reachable steps to the default,
	// clearing what was there before.
	g.SetLength(6)
	require.Equal(t, 20, g.ValueAt(0))
	require.Equal(t, 1, g.ValueAt(1))
	for i := 2; i < 6; i++ {
		require.Equal(t, 12, g.ValueAt(i), "step %d", i)
	}
}

func TestGearSetLengthWrapsPosition(t *testing.T) {
	g := NewGear(8, GearPitch)
	g.SetPosition(6)
	g.SetLength(4)
	require.Equal(t, 2, g.Position())
}

func TestGearRandomizeOffsetStaysInRange(t *testing.T) {
	g := NewGear(16, GearOffset)
	rng := rand.New(rand.NewPCG(3, 3))
	for trial := 0; trial < 50; trial++ {
		g.Randomize(rng)
		for i := 0; i < 16; i++ {
			v := g.ValueAt(i)
			require.GreaterOrEqual(t, v, -12)
			require.LessOrEqual(t, v, 12)
		}
	}
}

func TestGearRandomizeDeterministic(t *testing.T) {
	a := NewGear(16, GearPitch)
	b := NewGear(16, GearPitch)
	a.Randomize(rand.New(rand.NewPCG(9, 9)))
	b.Randomize(rand.New(rand.NewPCG(9, 9)))
	for i := 0; i < 16; i++ {
		require.Equal(t, a.ValueAt(i), b.ValueAt(i))
	}
}

func TestGearEuclideanPattern(t *testing.T) {
	g := NewGear(16, GearGate)
	g.SetEuclidean(3, 8)
	require.Equal(t, 8, g.Length())

	want := []int{1, 0, 0, 1, 0, 0, 1, 0}
	for i, w := range want {
		require.Equal(t, w, g.ValueAt(i), "step %d", i)
	}
	// Steps beyond the active length are zeroed.
	require.Zero(t, g.data[8])
}

func TestGearStateRoundTrip(t *testing.T) {
	g := NewGear(7, GearOffset)
	g.SetValueAt(2, 5)
	g.SetValueAt(4, -3)
	g.Advance()
	g.Advance()

	raw, err := json.Marshal(g.State())
	require.NoError(t, err)

	var s GearState
	require.NoError(t, json.Unmarshal(raw, &s))

	g2 := NewGear(16, GearOffset)
	g2.LoadState(s)
	require.Equal(t, 7, g2.Length())
	require.Equal(t, 2, g2.Position())
	require.Equal(t, 5, g2.ValueAt(2))
	require.Equal(t, -3, g2.ValueAt(4))
}

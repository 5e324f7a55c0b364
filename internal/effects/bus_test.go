package effects

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPingPongFirstRepeatOnLeft(t *testing.T) {
	p := NewPingPong(1000)
	p.SetTime(0.01, 1000) // 10 samples

	l, r := p.Process(1)
	require.Equal(t, 0.0, l)
	require.Equal(t, 0.0, r)

	for i := 0; i < 9; i++ {
		p.Process(0)
	}
	l, r = p.Process(0)
	require.Equal(t, 1.0, l)
	require.Equal(t, 0.0, r)

	// The second repeat crosses to the right at feedback gain.
	for i := 0; i < 9; i++ {
		p.Process(0)
	}
	l, r = p.Process(0)
	require.Equal(t, 0.0, l)
	require.InDelta(t, 0.45, r, 1e-12)
}

func TestPingPongResetSilences(t *testing.T) {
	p := NewPingPong(1000)
	p.SetTime(0.005, 1000)
	p.Process(1)
	p.Reset()
	for i := 0; i < 20; i++ {
		l, r := p.Process(0)
		require.Equal(t, 0.0, l)
		require.Equal(t, 0.0, r)
	}
}

func TestBusDryWhenWetZero(t *testing.T) {
	b := NewBus(1000)
	for i := 0; i < 100; i++ {
		l, r := b.Process(0.25)
		require.Equal(t, l, r)
		require.InDelta(t, 0.25, float64(l), 0.01) // tanh(0.25) ~ 0.245
	}
}

func TestBusWetProducesStereoRepeats(t *testing.T) {
	b := NewBus(1000)
	b.SetWet(1)
	b.SyncToPeriod(0.02) // 15 samples

	b.Process(1)
	var sawDifference bool
	for i := 0; i < 40; i++ {
		l, r := b.Process(0)
		if l != r {
			sawDifference = true
		}
	}
	require.True(t, sawDifference)
}

func TestSoftClipBounds(t *testing.T) {
	require.Less(t, softClip(10), 1.0)
	require.Greater(t, softClip(-10), -1.0)
	require.InDelta(t, 0.1, softClip(0.1), 1e-3)
}

package midifile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteToEmitsFormat1SMF(t *testing.T) {
	r := NewRecorder(48000, 120)
	// Four quarter-note ticks at 120 BPM, one muted.
	r.Note(0, 0, true, false, false)
	r.Note(24000, 4.0/12, true, true, false)
	r.Note(48000, 7.0/12, false, false, false)
	r.Note(72000, 0, true, false, true)
	r.Drum(0, 0)
	r.Drum(24000, 2)

	var buf bytes.Buffer
	require.NoError(t, r.WriteTo(&buf))
	blob := buf.Bytes()

	require.Greater(t, len(blob), 40)
	require.Equal(t, "MThd", string(blob[0:4]))
	// Header chunk: length 6, format 1, two tracks, 480 ticks per
	// quarter.
	require.Equal(t, []byte{0, 0, 0, 6}, blob[4:8])
	require.Equal(t, []byte{0, 1}, blob[8:10])
	require.Equal(t, []byte{0, 2}, blob[10:12])
	require.Equal(t, []byte{0x01, 0xE0}, blob[12:14])
	require.Equal(t, "MTrk", string(blob[14:18]))
}

func TestNoteClampsKeyRange(t *testing.T) {
	r := NewRecorder(48000, 120)
	r.Note(0, -20, true, false, false)
	r.Note(100, 20, true, false, false)

	var buf bytes.Buffer
	require.NoError(t, r.WriteTo(&buf))
	require.Equal(t, "MThd", string(buf.Bytes()[0:4]))
}

func TestDrumIgnoresUnknownChannel(t *testing.T) {
	r := NewRecorder(48000, 120)
	r.Drum(0, 9)
	require.Empty(t, r.events)
}

func TestFrameTicks(t *testing.T) {
	r := NewRecorder(48000, 120)
	// One second at 120 BPM is two quarter notes.
	require.Equal(t, uint32(2*resolution), r.frameTicks(48000))
}

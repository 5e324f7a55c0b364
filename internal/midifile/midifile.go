// Package midifile records a rendered run of the rack as a Standard
// MIDI File: melodic ticks become notes on channel 0, gate triggers
// become drum hits on channel 9.
package midifile

import (
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const resolution = 480

// middleC is the MIDI key at 0 V on the pitch input.
const middleC = 60

// drumKeys maps gate channels to General MIDI percussion: kick,
// snare, closed hat, open hat.
var drumKeys = []uint8{36, 38, 42, 46}

type noteEvent struct {
	frame  int
	key    uint8
	vel    uint8
	slide  bool
	gate   bool
	isDrum bool
	drumCh int
}

// Recorder accumulates timed events at audio-frame resolution and
// writes them out as a two-track SMF.
type Recorder struct {
	sampleRate int
	bpm        float64
	events     []noteEvent
}

// NewRecorder creates a recorder for a run at the given sample rate
// and tempo.
func NewRecorder(sampleRate int, bpm float64) *Recorder {
	return &Recorder{sampleRate: sampleRate, bpm: bpm}
}

// Note records a melodic tick. pitchV is in volts (1 V/oct, 0 V =
// middle C); muted ticks (gate false) end the previous note without
// starting a new one.
func (r *Recorder) Note(frame int, pitchV float64, gate, accent, slide bool) {
	key := middleC + int(math.Round(pitchV*12))
	if key < 0 {
		key = 0
	}
	if key > 127 {
		key = 127
	}
	vel := uint8(100)
	if accent {
		vel = 127
	}
	r.events = append(r.events, noteEvent{
		frame: frame,
		key:   uint8(key),
		vel:   vel,
		slide: slide,
		gate:  gate,
	})
}

// Drum records a gate trigger on the given channel.
func (r *Recorder) Drum(frame int, channel int) {
	if channel < 0 || channel >= len(drumKeys) {
		return
	}
	r.events = append(r.events, noteEvent{
		frame:  frame,
		isDrum: true,
		drumCh: channel,
	})
}

// frameTicks converts an audio frame index to SMF ticks.
func (r *Recorder) frameTicks(frame int) uint32 {
	seconds := float64(frame) / float64(r.sampleRate)
	return uint32(seconds * r.bpm / 60 * resolution)
}

type timedMsg struct {
	tick uint32
	msg  midi.Message
}

// WriteTo writes the recorded run as a format-1 SMF with a melodic
// track and a drum track.
func (r *Recorder) WriteTo(w io.Writer) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)

	var melodic, drums []timedMsg

	// Melodic notes last until the next tick; muted ticks leave a
	// rest. A slide tick extends the note slightly past the next
	// note's start so the overlap reads as legato.
	notes := r.melodicEvents()
	for i, ev := range notes {
		if !ev.gate {
			continue
		}
		start := r.frameTicks(ev.frame)
		end := start + resolution/4
		if i+1 < len(notes) {
			end = r.frameTicks(notes[i+1].frame)
		}
		if ev.slide {
			end += resolution / 16
		}
		melodic = append(melodic,
			timedMsg{start, midi.NoteOn(0, ev.key, ev.vel)},
			timedMsg{end, midi.NoteOff(0, ev.key)},
		)
	}

	for _, ev := range r.events {
		if !ev.isDrum {
			continue
		}
		start := r.frameTicks(ev.frame)
		drums = append(drums,
			timedMsg{start, midi.NoteOn(9, drumKeys[ev.drumCh], 110)},
			timedMsg{start + resolution/8, midi.NoteOff(9, drumKeys[ev.drumCh])},
		)
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("melodic"))
	tr.Add(0, smf.MetaTempo(r.bpm))
	addSorted(&tr, melodic)
	tr.Close(0)
	s.Add(tr)

	var dr smf.Track
	dr.Add(0, smf.MetaTrackSequenceName("gates"))
	addSorted(&dr, drums)
	dr.Close(0)
	s.Add(dr)

	_, err := s.WriteTo(w)
	return err
}

func (r *Recorder) melodicEvents() []noteEvent {
	var out []noteEvent
	for _, ev := range r.events {
		if !ev.isDrum {
			out = append(out, ev)
		}
	}
	return out
}

// addSorted appends messages to a track in tick order, converting
// absolute ticks to deltas.
func addSorted(tr *smf.Track, msgs []timedMsg) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].tick < msgs[j].tick })
	var last uint32
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
}

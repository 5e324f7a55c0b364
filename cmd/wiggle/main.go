package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/timini/wiggleroom"
	"github.com/timini/wiggleroom/internal/clock"
	"github.com/timini/wiggleroom/internal/euclid"
	"github.com/timini/wiggleroom/internal/midifile"
	"github.com/timini/wiggleroom/internal/prob"
	"github.com/timini/wiggleroom/internal/truthtable"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "render sample rate")
		bpm        = flag.Float64("bpm", 120, "master clock tempo")
		seed       = flag.Uint("seed", 1, "random seed (0 = unseeded)")
		channels   = flag.Int("channels", 4, "gate channels (2..4)")
		swing      = flag.Float64("swing", 50, "swing percent (50 = even)")
		preset     = flag.String("preset", "", "truth-table preset to load")
		delayWet   = flag.Float64("delay", 0, "tempo-synced delay mix (0..1)")
		seconds    = flag.Float64("seconds", 8, "render duration")
		wavPath    = flag.String("wav", "", "render audio to a WAV file")
		midiPath   = flag.String("midi", "", "capture a run to a MIDI file")
		savePath   = flag.String("save", "", "write rack state JSON")
		loadPath   = flag.String("load", "", "load rack state JSON before rendering")

		pattern     = flag.String("pattern", "", "print a Euclidean pattern: steps,hits")
		listPresets = flag.Bool("presets", false, "list truth-table presets")
		probStats   = flag.String("prob", "", "sample a probability gate: p,count")
		schedSim    = flag.String("sim", "", "simulate the clock scheduler: speedIdx,swingPct")
	)
	flag.Parse()

	switch {
	case *pattern != "":
		if err := printPattern(*pattern); err != nil {
			log.Fatal(err)
		}
		return
	case *listPresets:
		for _, name := range truthtable.PresetNames {
			fmt.Println(name)
		}
		return
	case *probStats != "":
		if err := printProbStats(*probStats, uint32(*seed)); err != nil {
			log.Fatal(err)
		}
		return
	case *schedSim != "":
		if err := printSchedulerSim(*schedSim, *bpm, *seconds); err != nil {
			log.Fatal(err)
		}
		return
	}

	opts := []wiggleroom.Option{
		wiggleroom.WithBPM(*bpm),
		wiggleroom.WithChannels(*channels),
		wiggleroom.WithSwing(*swing),
		wiggleroom.WithDelay(*delayWet),
	}
	if *seed != 0 {
		opts = append(opts, wiggleroom.WithSeed(uint32(*seed)))
	}
	if *preset != "" {
		opts = append(opts, wiggleroom.WithTablePreset(*preset))
	}
	rack := wiggleroom.NewRack(*sampleRate, opts...)

	if *loadPath != "" {
		data, err := os.ReadFile(*loadPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := rack.UnmarshalJSON(data); err != nil {
			log.Fatal(err)
		}
	}

	if *midiPath != "" {
		if err := captureMIDI(rack, *seconds, *bpm, *midiPath); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", *midiPath)
	}

	if *wavPath != "" {
		samples := wiggleroom.RenderSamples(rack, *seconds)
		blob := wiggleroom.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavPath, blob, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", *wavPath)
	}

	if *savePath != "" {
		data, err := rack.MarshalJSON()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*savePath, data, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", *savePath)
	}

	if *wavPath == "" && *midiPath == "" && *savePath == "" {
		printSummary(rack)
	}
}

// captureMIDI runs the rack frame by frame and records its events.
func captureMIDI(rack *wiggleroom.Rack, seconds, bpm float64, path string) error {
	rec := midifile.NewRecorder(rack.SampleRate(), bpm)
	frame := 0
	rack.SetEventFunc(func(ev wiggleroom.Event) {
		switch ev.Kind {
		case wiggleroom.EventNote:
			rec.Note(frame, ev.Pitch, ev.Gate, ev.Accent, ev.Slide)
		case wiggleroom.EventGate:
			rec.Drum(frame, ev.Channel)
		}
	})
	frames := int(float64(rack.SampleRate()) * seconds)
	for ; frame < frames; frame++ {
		rack.RenderFrame()
	}
	rack.SetEventFunc(nil)

	var buf bytes.Buffer
	if err := rec.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func printSummary(rack *wiggleroom.Rack) {
	params := rack.EuclogicParams()
	fmt.Printf("bpm %.0f\n\n", rack.BPM())
	for i := 0; i < rack.Euclogic().Channels(); i++ {
		cp := params.Channel[i]
		var e euclid.Engine
		e.Configure(cp.Steps, int(cp.Hits), 0)
		fmt.Printf("ch%d E(%d,%d)  %s\n", i+1, int(cp.Hits), cp.Steps, patternString(&e, cp.Steps))
	}

	table := rack.Euclogic().Table()
	fmt.Println("\ntruth table")
	for s := 0; s < table.States(); s++ {
		fmt.Printf("  %0*b -> %0*b\n", table.Channels(), s, table.Channels(), table.Mapping(uint8(s)))
	}

	gearA := rack.ACID9().Engine().GearA()
	fmt.Println("\ngear A")
	var vals []string
	for i := 0; i < gearA.Length(); i++ {
		vals = append(vals, fmt.Sprint(gearA.ValueAt(i)))
	}
	fmt.Println(" ", strings.Join(vals, " "))
}

func printPattern(arg string) error {
	var steps, hits int
	if _, err := fmt.Sscanf(arg, "%d,%d", &steps, &hits); err != nil {
		return fmt.Errorf("bad -pattern %q: want steps,hits", arg)
	}
	var e euclid.Engine
	e.Configure(steps, hits, 0)
	fmt.Println(patternString(&e, steps))
	return nil
}

func patternString(e *euclid.Engine, steps int) string {
	var b strings.Builder
	for i := 0; i < steps; i++ {
		if e.Hit(i) {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// printSchedulerSim drives the scheduler with an internal pulse clock
// and prints the tick times it produces.
func printSchedulerSim(arg string, bpm, seconds float64) error {
	var speedIdx int
	var swing float64
	if _, err := fmt.Sscanf(arg, "%d,%g", &speedIdx, &swing); err != nil {
		return fmt.Errorf("bad -sim %q: want speedIdx,swingPct", arg)
	}
	const rate = 48000.0
	clk := clock.NewPulseClock(bpm)
	sched := clock.NewScheduler()
	sched.SetSpeedIndex(speedIdx)
	sched.SetSwingPercent(swing)
	sched.SetRunning(true)

	frames := int(rate * seconds)
	dt := 1 / rate
	for i := 0; i < frames; i++ {
		if sched.Process(clk.Process(dt), dt) {
			fmt.Printf("tick %.4fs\n", float64(i)/rate)
		}
	}
	fmt.Printf("period %.4fs locked=%v\n", sched.Period(), sched.Locked())
	return nil
}

func printProbStats(arg string, seed uint32) error {
	var p float64
	var count int
	if _, err := fmt.Sscanf(arg, "%g,%d", &p, &count); err != nil {
		return fmt.Errorf("bad -prob %q: want p,count", arg)
	}
	g := prob.NewSeeded(seed)
	passed := 0
	for i := 0; i < count; i++ {
		if g.ProcessProb(true, p) {
			passed++
		}
	}
	fmt.Printf("p=%.3f  passed %d/%d (%.1f%%)\n", p, passed, count, 100*float64(passed)/float64(count))
	return nil
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/timini/wiggleroom"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		bpm        = flag.Float64("bpm", 120, "master clock tempo")
		seed       = flag.Uint("seed", 0, "random seed (0 = unseeded)")
		channels   = flag.Int("channels", 4, "gate channels (2..4)")
		swing      = flag.Float64("swing", 50, "swing percent (50 = even)")
		preset     = flag.String("preset", "", "truth-table preset to load")
		volume     = flag.Float64("volume", 1.0, "master volume")
		delayWet   = flag.Float64("delay", 0, "tempo-synced delay mix (0..1)")
		seconds    = flag.Float64("seconds", 0, "stop after N seconds (0 = run until interrupted)")
		loadPath   = flag.String("load", "", "load rack state JSON")
		quiet      = flag.Bool("quiet", false, "suppress event printing")
	)
	flag.Parse()

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

	pl, err := wiggleroom.NewPlayer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	if *loadPath != "" {
		data, err := os.ReadFile(*loadPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := pl.Rack().UnmarshalJSON(data); err != nil {
			log.Fatal(err)
		}
	}
	pl.SetMasterVolume(*volume)

	ch := pl.Watch()
	pl.Play()

	var deadline <-chan time.Time
	if *seconds > 0 {
		deadline = time.After(time.Duration(*seconds * float64(time.Second)))
	}

	for {
		select {
		case ev := <-ch:
			if *quiet {
				continue
			}
			switch ev.Kind {
			case wiggleroom.EventNote:
				if ev.Gate {
					fmt.Printf("note  %+.3fV accent=%v slide=%v\n", ev.Pitch, ev.Accent, ev.Slide)
				}
			case wiggleroom.EventGate:
				fmt.Printf("gate  ch%d\n", ev.Channel+1)
			}
		case <-deadline:
			if err := pl.Stop(); err != nil {
				log.Fatal(err)
			}
			return
		}
	}
}

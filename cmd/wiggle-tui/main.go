package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timini/wiggleroom"
	"github.com/timini/wiggleroom/internal/tui"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		bpm        = flag.Float64("bpm", 120, "master clock tempo")
		seed       = flag.Uint("seed", 0, "random seed (0 = unseeded)")
		channels   = flag.Int("channels", 4, "gate channels (2..4)")
		preGates   = flag.Bool("pre-gates", false, "show pre-logic gate lights")
		preset     = flag.String("preset", "", "truth-table preset to load")
		loadPath   = flag.String("load", "", "load rack state JSON")
	)
	flag.Parse()

	opts := []wiggleroom.Option{
		wiggleroom.WithBPM(*bpm),
		wiggleroom.WithChannels(*channels),
		wiggleroom.WithPreGates(*preGates),
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
	pl.Play()

	prog := tea.NewProgram(tui.NewModel(pl), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		log.Fatal(err)
	}
}

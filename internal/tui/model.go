// Package tui is the terminal front panel: the truth-table LED
// matrix with a cursor, the per-channel gate lights and the melodic
// sequencer status line.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timini/wiggleroom"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

type Model struct {
	player *wiggleroom.Player
	rack   *wiggleroom.Rack
	styles Styles
	events <-chan wiggleroom.Event

	cursorRow int // truth-table input state
	cursorCol int // output bit

	lastNote string
	quitting bool
}

// frameMsg drives the periodic panel refresh; the gate lights read
// the modules' atomic display snapshots.
type frameMsg time.Time

type eventMsg wiggleroom.Event

// NewModel builds the front panel for a player.
func NewModel(player *wiggleroom.Player) Model {
	return Model{
		player: player,
		rack:   player.Rack(),
		styles: DefaultStyles(),
		events: player.Watch(),
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func listenEvents(ch <-chan wiggleroom.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-ch)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTick(), listenEvents(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		return m, frameTick()

	case eventMsg:
		ev := wiggleroom.Event(msg)
		if ev.Kind == wiggleroom.EventNote && ev.Gate {
			m.lastNote = formatNote(ev)
		}
		return m, listenEvents(m.events)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	table := m.rack.Euclogic().Table()
	states := table.States()
	channels := table.Channels()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.player != nil {
			_ = m.player.Stop()
		}
		return m, tea.Quit

	case " ":
		if m.player == nil {
			break
		}
		if m.player.IsPlaying() {
			m.player.Pause()
		} else {
			m.player.Play()
		}

	case "up", "k":
		m.cursorRow = (m.cursorRow + states - 1) % states
	case "down", "j":
		m.cursorRow = (m.cursorRow + 1) % states
	case "left", "h":
		m.cursorCol = (m.cursorCol + channels - 1) % channels
	case "right", "l":
		m.cursorCol = (m.cursorCol + 1) % channels

	case "enter", "t":
		table.PushUndo()
		table.ToggleBit(uint8(m.cursorRow), uint8(m.cursorCol))

	case "r":
		m.rack.PressRandom()
	case "m":
		m.rack.PressMutate()
	case "u":
		m.rack.PressUndo()
	case "y":
		m.rack.PressRedo()

	case "a":
		m.rack.PressMutateA()
	case "b":
		m.rack.PressMutateB()
	case "i":
		m.rack.PressInject()
	case "R":
		m.rack.PressReset()

	case "+", "=":
		m.rack.SetBPM(m.rack.BPM() + 5)
	case "-", "_":
		m.rack.SetBPM(m.rack.BPM() - 5)
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	core := m.rack.Euclogic()
	table := core.Table()
	states := table.States()
	channels := table.Channels()
	currentState := int(core.DisplayInputState())

	playState := "STOP"
	if m.player != nil && m.player.IsPlaying() {
		playState = "PLAY"
	}
	lockState := "unlocked"
	if core.Scheduler().Locked() {
		lockState = "locked"
	}
	header := m.styles.Header.Render(
		fmt.Sprintf("wiggleroom  %s  %3.0f bpm  clock %s", playState, m.rack.BPM(), lockState))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	// Truth-table matrix: one row per input state, one column per
	// output bit. The row matching the live input state is lit.
	for s := 0; s < states; s++ {
		label := fmt.Sprintf("%0*b ", channels, s)
		if s == currentState {
			out.WriteString(m.styles.Current.Render(label))
		} else {
			out.WriteString(m.styles.Dim.Render(label))
		}
		mapping := table.Mapping(uint8(s))
		for c := 0; c < channels; c++ {
			lit := mapping&(1<<uint(c)) != 0
			cell := "·"
			if lit {
				cell = "●"
			}
			switch {
			case s == m.cursorRow && c == m.cursorCol:
				out.WriteString(m.styles.Cursor.Render(cell))
			case lit:
				out.WriteString(m.styles.LedOn.Render(cell))
			default:
				out.WriteString(m.styles.LedOff.Render(cell))
			}
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}

	// Gate lights.
	out.WriteString("\n")
	out.WriteString(m.styles.Dim.Render("gates "))
	for c := 0; c < core.Channels(); c++ {
		if core.DisplayGate(c) {
			out.WriteString(m.styles.Gate.Render("■ "))
		} else {
			out.WriteString(m.styles.LedOff.Render("□ "))
		}
	}
	if core.HasPreGate() {
		out.WriteString(m.styles.Dim.Render(" pre "))
		for c := 0; c < core.Channels(); c++ {
			if core.DisplayPreGate(c) {
				out.WriteString(m.styles.Gate.Render("■ "))
			} else {
				out.WriteString(m.styles.LedOff.Render("□ "))
			}
		}
	}
	out.WriteString("\n")

	if m.lastNote != "" {
		out.WriteString(m.styles.Accent.Render("note  " + m.lastNote))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.styles.Dim.Render(
		"hjkl:cursor t:toggle r:random m:mutate u:undo y:redo a/b:gears i:inject R:reset +/-:tempo space:play q:quit"))
	return out.String()
}

func formatNote(ev wiggleroom.Event) string {
	semis := int(ev.Pitch*12 + 0.5)
	for semis < 0 {
		semis += 12
	}
	name := noteNames[semis%12]
	var marks []string
	if ev.Accent {
		marks = append(marks, "accent")
	}
	if ev.Slide {
		marks = append(marks, "slide")
	}
	if len(marks) == 0 {
		return name
	}
	return name + " (" + strings.Join(marks, ", ") + ")"
}

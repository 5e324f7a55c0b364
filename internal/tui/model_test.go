package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/timini/wiggleroom"
)

func testModel() Model {
	return Model{
		rack:   wiggleroom.NewRack(48000, wiggleroom.WithSeed(1)),
		styles: DefaultStyles(),
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorNavigationWraps(t *testing.T) {
	m := testModel()

	next, _ := m.Update(key("j"))
	m = next.(Model)
	require.Equal(t, 1, m.cursorRow)

	next, _ = m.Update(key("k"))
	m = next.(Model)
	next, _ = m.Update(key("k"))
	m = next.(Model)
	require.Equal(t, 15, m.cursorRow)

	next, _ = m.Update(key("h"))
	m = next.(Model)
	require.Equal(t, 3, m.cursorCol)
}

func TestToggleKeyFlipsMappingBit(t *testing.T) {
	m := testModel()
	table := m.rack.Euclogic().Table()
	before := table.Mapping(0)

	next, _ := m.Update(key("t"))
	m = next.(Model)

	require.NotEqual(t, before, table.Mapping(0))
	require.Equal(t, before^1, table.Mapping(0))
	require.Equal(t, 1, table.UndoDepth())
}

func TestViewShowsMatrixAndGates(t *testing.T) {
	m := testModel()
	view := m.View()
	require.Contains(t, view, "wiggleroom")
	require.Contains(t, view, "gates")
	// 16 input-state rows for a 4-channel table.
	require.Contains(t, view, "0000")
	require.Contains(t, view, "1111")
}

func TestTempoKeysAdjustBPM(t *testing.T) {
	m := testModel()
	base := m.rack.BPM()

	next, _ := m.Update(key("+"))
	m = next.(Model)
	require.InDelta(t, base+5, m.rack.BPM(), 1e-9)

	next, _ = m.Update(key("-"))
	m = next.(Model)
	require.InDelta(t, base, m.rack.BPM(), 1e-9)
}

func TestFormatNote(t *testing.T) {
	got := formatNote(wiggleroom.Event{Pitch: 4.0 / 12, Accent: true})
	require.True(t, strings.HasPrefix(got, "E"))
	require.Contains(t, got, "accent")
}

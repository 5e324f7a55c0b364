package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the front panel.
type Styles struct {
	Header  lipgloss.Style
	Dim     lipgloss.Style
	LedOn   lipgloss.Style
	LedOff  lipgloss.Style
	Cursor  lipgloss.Style
	Current lipgloss.Style
	Gate    lipgloss.Style
	Accent  lipgloss.Style
}

// DefaultStyles returns the default panel palette.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		LedOn:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		LedOff:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("90")),
		Current: lipgloss.NewStyle().Foreground(lipgloss.Color("219")),
		Gate:    lipgloss.NewStyle().Foreground(lipgloss.Color("84")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

// Package styles holds the terminal styling for unalias output: the glamour
// markdown style for reports and lipgloss styles for the summary line and
// the interactive view.
package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Zest.Hex())).Background(lipgloss.Color(charmtone.Charple.Hex())).Padding(0, 1)
	Label   = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	Value   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Smoke.Hex()))
	Good    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Guac.Hex()))
	Warn    = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
	Address = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// interactive view
	Selected = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Charple.Hex()))
	ListName = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex())).MarginLeft(2)
	Menu     = lipgloss.NewStyle().Background(lipgloss.Color(charmtone.Pepper.Hex())).Foreground(lipgloss.Color(charmtone.Smoke.Hex())).Padding(0, 1)
)

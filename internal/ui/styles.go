// Package ui contains the bubbletea models for the terminal client: the
// login prompt, the scrolling meme feed, and the per-meme comment panel.
package ui

import "github.com/charmbracelet/lipgloss"

// Lipgloss styles shared across the views.
var (
	// Header style - bright magenta background, bold black text
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("213")).
			Bold(true).
			Padding(0, 1)

	// Section title style - bold bright magenta
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true)

	// Label style - dim magenta
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("176"))

	// Value style - bright white
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	// Dim style - units and secondary info
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Selected feed entry - left border marker
	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("213")).
			PaddingLeft(1)

	entryStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// Footer style - bright keys on dim text
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)
)

// footerKeys renders a [key] help footer from alternating key/label pairs.
func footerKeys(pairs ...string) string {
	var out string
	for i := 0; i+1 < len(pairs); i += 2 {
		out += footerKeyStyle.Render("["+pairs[i]+"]") + footerStyle.Render(" "+pairs[i+1]+"  ")
	}
	return out
}

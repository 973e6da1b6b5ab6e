// Package ui renders MyDayLog views for the terminal with light and dark themes.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"mydaylog/internal/domain/usersettings"
)

// Palette
var (
	LightForeground = lipgloss.Color("#1f2933")
	LightMuted      = lipgloss.Color("#9aa5b1")
	LightAccent     = lipgloss.Color("#2f80ed")
	LightBorder     = lipgloss.Color("#d9dee4")

	DarkForeground = lipgloss.Color("#e4e7eb")
	DarkMuted      = lipgloss.Color("#616e7c")
	DarkAccent     = lipgloss.Color("#63a4ff")
	DarkBorder     = lipgloss.Color("#3e4c59")

	Received = lipgloss.Color("#27ae60")
	Skipped  = lipgloss.Color("#eb5757")
	Partial  = lipgloss.Color("#f2c94c")
)

// Theme holds the colours of one scheme.
type Theme struct {
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light scheme.
func LightTheme() Theme {
	return Theme{Foreground: LightForeground, Muted: LightMuted, Accent: LightAccent, Border: LightBorder}
}

// DarkTheme returns the dark scheme.
func DarkTheme() Theme {
	return Theme{Foreground: DarkForeground, Muted: DarkMuted, Accent: DarkAccent, Border: DarkBorder, IsDark: true}
}

// ThemeFor picks the scheme saved in the user's settings.
func ThemeFor(t usersettings.Theme) Theme {
	if t == usersettings.ThemeDark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Day      lipgloss.Style
	Today    lipgloss.Style
	Future   lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	Box      lipgloss.Style
	Toast    lipgloss.Style
	Banner   lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t Theme) Styles {
	cell := lipgloss.NewStyle().Width(6).Align(lipgloss.Center).Foreground(t.Foreground)
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginBottom(1),
		Header:   cell.Foreground(t.Muted).Bold(true),
		Day:      cell,
		Today:    cell.Bold(true).Underline(true).Foreground(t.Accent),
		Future:   cell.Foreground(t.Muted).Faint(true),
		Selected: cell.Reverse(true),
		Cursor:   cell.Bold(true).Border(lipgloss.NormalBorder(), false, true).BorderForeground(t.Accent).Width(4),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		Toast:    lipgloss.NewStyle().Foreground(t.Accent).Italic(true),
		Banner:   lipgloss.NewStyle().Foreground(Partial).Bold(true),
	}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mydaylog/internal/domain/calendar"
	"mydaylog/internal/domain/meal"
)

// Status glyphs
const (
	GlyphReceived = "●"
	GlyphSkipped  = "○"
	GlyphUnset    = "·"
)

// SlotLabel returns the capitalised slot name.
func SlotLabel(s meal.Slot) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Glyph returns the symbol for a slot status.
func Glyph(s meal.Status) string {
	switch s {
	case meal.StatusReceived:
		return GlyphReceived
	case meal.StatusSkipped:
		return GlyphSkipped
	}
	return GlyphUnset
}

func statusColor(s meal.Status) lipgloss.Color {
	switch s {
	case meal.StatusReceived:
		return Received
	case meal.StatusSkipped:
		return Skipped
	}
	return ""
}

func glyph(s meal.Status) string {
	c := statusColor(s)
	if c == "" {
		return Glyph(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(Glyph(s))
}

// Calendar renders a month grid. Each day shows its number and a lunch and a
// dinner glyph. cursor is the date key to highlight, or "".
func Calendar(st Styles, g calendar.Grid, cursor string) string {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", g.Month, g.Year)
	b.WriteString(st.Title.Render(title))
	b.WriteString("\n")

	headers := make([]string, len(g.Headers))
	for i, h := range g.Headers {
		headers[i] = st.Header.Render(h)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	for _, week := range g.Weeks {
		row := make([]string, len(week))
		for i, c := range week {
			row[i] = cellView(st, c, cursor)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	b.WriteString(st.Muted.Render(fmt.Sprintf("%s received  %s skipped  %s not set  (lunch dinner)",
		GlyphReceived, GlyphSkipped, GlyphUnset)))
	return b.String()
}

func cellView(st Styles, c calendar.Cell, cursor string) string {
	if c.Placeholder {
		return st.Day.Render("\n")
	}
	text := fmt.Sprintf("%2d\n%s %s", c.Date.Day(), glyph(c.Lunch), glyph(c.Dinner))
	switch {
	case c.Key == cursor:
		return st.Cursor.Render(text)
	case c.Selected:
		return st.Selected.Render(text)
	case c.Future:
		return st.Future.Render(fmt.Sprintf("%2d\n", c.Date.Day()))
	case c.Today:
		return st.Today.Render(text)
	}
	return st.Day.Render(text)
}

// Summary renders week and month tallies and the streak.
func Summary(st Styles, s meal.Summary) string {
	line := func(label string, t meal.Tally) string {
		return fmt.Sprintf("%-7s %3d%%  %2d received  %2d skipped  %2d not set", label, t.Pct, t.Received, t.Skipped, t.Unset)
	}
	var b strings.Builder
	b.WriteString(st.Title.Render("This week"))
	b.WriteString("\n")
	b.WriteString(line("Lunch", s.Week.Lunch) + "\n")
	b.WriteString(line("Dinner", s.Week.Dinner) + "\n\n")
	b.WriteString(st.Title.Render("This month"))
	b.WriteString("\n")
	b.WriteString(line("Lunch", s.Month.Lunch) + "\n")
	b.WriteString(line("Dinner", s.Month.Dinner) + "\n\n")
	days := "days"
	if s.Streak == 1 {
		days = "day"
	}
	b.WriteString(fmt.Sprintf("Streak: %d %s with both meals received", s.Streak, days))
	return st.Box.Render(b.String())
}

// Day renders the detail of one date.
func Day(st Styles, date string, d meal.Day) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(date))
	b.WriteString("\n")
	for _, slot := range meal.Slots {
		status := d.StatusOf(slot)
		label := string(status)
		if status == meal.StatusUnset {
			label = "not set"
		}
		fmt.Fprintf(&b, "%-7s %s %s", SlotLabel(slot), glyph(status), label)
		if e := d.Get(slot); e != nil && e.Reason != "" {
			b.WriteString(st.Muted.Render("  " + e.Reason))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

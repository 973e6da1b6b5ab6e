package calendar

import (
	"time"

	"mydaylog/internal/domain/meal"
)

// Tone summarises a day's meals for the dot shown under the date.
type Tone string

// Tone constants
const (
	ToneNone    Tone = ""        // nothing recorded
	ToneAllDone Tone = "done"    // both meals received
	TonePartial Tone = "partial" // at least one meal received
	ToneSkipped Tone = "skipped" // meals recorded but none received
)

// Input is everything the grid builder needs.
// PRE: Month in 1..12. Today carries the location used for every date.
type Input struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Days      meal.Month
	Selection map[string]bool
	Today     time.Time
}

// Cell is one square of the grid. Placeholder cells have a zero Date and no key.
type Cell struct {
	Date        time.Time
	Key         string
	Placeholder bool
	Today       bool
	Future      bool
	Selected    bool
	Lunch       meal.Status
	Dinner      meal.Status
	Tone        Tone
}

// Grid is a month laid out in weeks.
// INVARIANT: every row has exactly 7 cells.
type Grid struct {
	Year    int
	Month   time.Month
	Headers []string
	Weeks   [][]Cell
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Headers returns the seven weekday labels starting at weekStart.
func Headers(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = weekdayLabels[(int(weekStart)+i)%7]
	}
	return out
}

// Build lays the month out as a grid padded with placeholders.
// PRE: in.Month in 1..12
// POST: len(cells) is a multiple of 7; real cells appear in date order
func Build(in Input) Grid {
	loc := in.Today.Location()
	first := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, loc)
	lead := (int(first.Weekday()) - int(in.WeekStart) + 7) % 7
	n := meal.DaysIn(in.Year, in.Month)

	cells := make([]Cell, 0, 42)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Placeholder: true})
	}
	for d := 1; d <= n; d++ {
		cells = append(cells, dayCell(time.Date(in.Year, in.Month, d, 0, 0, 0, 0, loc), in))
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{Placeholder: true})
	}

	g := Grid{Year: in.Year, Month: in.Month, Headers: Headers(in.WeekStart)}
	for i := 0; i < len(cells); i += 7 {
		g.Weeks = append(g.Weeks, cells[i:i+7])
	}
	return g
}

func dayCell(d time.Time, in Input) Cell {
	key := meal.DateKey(d)
	day := in.Days[key]
	return Cell{
		Date:     d,
		Key:      key,
		Today:    key == meal.DateKey(in.Today),
		Future:   IsFuture(d, in.Today),
		Selected: in.Selection[key],
		Lunch:    day.StatusOf(meal.Lunch),
		Dinner:   day.StatusOf(meal.Dinner),
		Tone:     ToneOf(day),
	}
}

// ToneOf classifies a day for display.
func ToneOf(day meal.Day) Tone {
	switch {
	case day.BothReceived():
		return ToneAllDone
	case day.StatusOf(meal.Lunch) == meal.StatusReceived || day.StatusOf(meal.Dinner) == meal.StatusReceived:
		return TonePartial
	case day.IsEmpty():
		return ToneNone
	}
	return ToneSkipped
}

// IsFuture reports whether d falls on a later calendar day than today.
// d's calendar date is compared at midnight in today's location.
func IsFuture(d, today time.Time) bool {
	y, m, dd := d.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, today.Location()).After(meal.Midnight(today))
}

// MonthRange returns the first and last date keys of a month.
func MonthRange(year int, month time.Month) (from, to string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, meal.DaysIn(year, month), 0, 0, 0, 0, time.UTC)
	return meal.DateKey(first), meal.DateKey(last)
}

// Shift moves a year/month pair by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// Cells returns every non-placeholder cell in order.
func (g Grid) Cells() []Cell {
	var out []Cell
	for _, w := range g.Weeks {
		for _, c := range w {
			if !c.Placeholder {
				out = append(out, c)
			}
		}
	}
	return out
}

// Find returns the cell for a date key.
func (g Grid) Find(key string) (Cell, bool) {
	for _, c := range g.Cells() {
		if c.Key == key {
			return c, true
		}
	}
	return Cell{}, false
}

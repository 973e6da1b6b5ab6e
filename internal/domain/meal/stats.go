package meal

import (
	"math"
	"time"
)

// Tally counts slot outcomes across a period.
// INVARIANT: Received + Skipped + Unset == Total
type Tally struct {
	Received int `json:"received"`
	Skipped  int `json:"skipped"`
	Unset    int `json:"unset"`
	Total    int `json:"total"`
	Pct      int `json:"pct"`
}

// SlotTallies pairs the lunch and dinner tallies of one period.
type SlotTallies struct {
	Lunch  Tally `json:"lunch"`
	Dinner Tally `json:"dinner"`
}

// Summary is everything the dashboard derives from the cache.
type Summary struct {
	Week   SlotTallies `json:"week"`
	Month  SlotTallies `json:"month"`
	Streak int         `json:"streak"`
}

// TallyDays counts slot outcomes over n consecutive days starting at start.
// PRE: n >= 0
// POST: Unset = max(0, n - Received - Skipped), Pct = round-half-up(Received/n*100)
func TallyDays(days Month, slot Slot, start time.Time, n int) Tally {
	t := Tally{Total: n}
	d := Midnight(start)
	for i := 0; i < n; i++ {
		switch days[DateKey(d)].StatusOf(slot) {
		case StatusReceived:
			t.Received++
		case StatusSkipped:
			t.Skipped++
		}
		d = d.AddDate(0, 0, 1)
	}
	t.Unset = max(0, t.Total-(t.Received+t.Skipped))
	if t.Total > 0 {
		t.Pct = int(math.Floor(float64(t.Received)/float64(t.Total)*100 + 0.5))
	}
	return t
}

// MonthTally counts slot outcomes over every day of the given month.
// PRE: month in 1..12
// POST: Total equals the number of days in the month
func MonthTally(days Month, year int, month time.Month, slot Slot, loc *time.Location) Tally {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return TallyDays(days, slot, first, DaysIn(year, month))
}

// WeekTally counts slot outcomes over the 7-day week containing today.
// PRE: weekStart is time.Monday or time.Sunday
// POST: Total == 7
func WeekTally(days Month, today time.Time, weekStart time.Weekday, slot Slot) Tally {
	return TallyDays(days, slot, WeekStartOf(today, weekStart), 7)
}

// WeekStartOf returns the midnight that opens the week containing t.
func WeekStartOf(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return Midnight(t).AddDate(0, 0, -offset)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Streak counts consecutive days ending at today where both slots were received.
// Today counts only when it qualifies; the walk stops at the first failing day.
// PRE: none
// POST: returns >= 0
func Streak(days Month, today time.Time) int {
	streak := 0
	d := Midnight(today)
	for days[DateKey(d)].BothReceived() {
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak
}

// Summarize computes the week, month and streak figures shown on the dashboard.
func Summarize(days Month, today time.Time, year int, month time.Month, weekStart time.Weekday) Summary {
	loc := today.Location()
	return Summary{
		Week: SlotTallies{
			Lunch:  WeekTally(days, today, weekStart, Lunch),
			Dinner: WeekTally(days, today, weekStart, Dinner),
		},
		Month: SlotTallies{
			Lunch:  MonthTally(days, year, month, Lunch, loc),
			Dinner: MonthTally(days, year, month, Dinner, loc),
		},
		Streak: Streak(days, today),
	}
}

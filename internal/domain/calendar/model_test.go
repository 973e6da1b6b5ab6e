package calendar

import (
	"testing"
	"time"

	"mydaylog/internal/domain/meal"
)

// TestBuild_PadsToWeeks tests placeholder padding for both week starts.
func TestBuild_PadsToWeeks(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		year      int
		month     time.Month
		weekStart time.Weekday
		wantLead  int
		wantWeeks int
	}{
		// 2024-02-01 is a Thursday
		{"feb 2024 monday start", 2024, time.February, time.Monday, 3, 5},
		{"feb 2024 sunday start", 2024, time.February, time.Sunday, 4, 5},
		// 2024-09-01 is a Sunday
		{"sep 2024 monday start", 2024, time.September, time.Monday, 6, 6},
		{"sep 2024 sunday start", 2024, time.September, time.Sunday, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(Input{Year: tt.year, Month: tt.month, WeekStart: tt.weekStart, Today: today})
			if len(g.Weeks) != tt.wantWeeks {
				t.Fatalf("weeks = %d, want %d", len(g.Weeks), tt.wantWeeks)
			}
			lead := 0
			for _, c := range g.Weeks[0] {
				if !c.Placeholder {
					break
				}
				lead++
			}
			if lead != tt.wantLead {
				t.Errorf("leading placeholders = %d, want %d", lead, tt.wantLead)
			}
			for i, w := range g.Weeks {
				if len(w) != 7 {
					t.Errorf("week %d has %d cells", i, len(w))
				}
			}
			if got := len(g.Cells()); got != meal.DaysIn(tt.year, tt.month) {
				t.Errorf("real cells = %d, want %d", got, meal.DaysIn(tt.year, tt.month))
			}
		})
	}
}

// TestBuild_Flags tests today, future, selection and status flags.
func TestBuild_Flags(t *testing.T) {
	today := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	days := meal.Month{
		"2024-03-01": {Lunch: &meal.Entry{Status: meal.StatusReceived}, Dinner: &meal.Entry{Status: meal.StatusReceived}},
		"2024-03-02": {Lunch: &meal.Entry{Status: meal.StatusReceived}, Dinner: &meal.Entry{Status: meal.StatusSkipped}},
		"2024-03-03": {Dinner: &meal.Entry{Status: meal.StatusSkipped}},
	}
	g := Build(Input{
		Year: 2024, Month: time.March, WeekStart: time.Monday,
		Days: days, Selection: map[string]bool{"2024-03-05": true}, Today: today,
	})

	check := func(key string, fn func(c Cell) bool, what string) {
		t.Helper()
		c, ok := g.Find(key)
		if !ok {
			t.Fatalf("cell %s missing", key)
		}
		if !fn(c) {
			t.Errorf("%s: %s not satisfied: %+v", key, what, c)
		}
	}
	check("2024-03-10", func(c Cell) bool { return c.Today && !c.Future }, "today, not future")
	check("2024-03-11", func(c Cell) bool { return c.Future && !c.Today }, "future")
	check("2024-03-05", func(c Cell) bool { return c.Selected }, "selected")
	check("2024-03-01", func(c Cell) bool { return c.Tone == ToneAllDone }, "all done")
	check("2024-03-02", func(c Cell) bool { return c.Tone == TonePartial && c.Dinner == meal.StatusSkipped }, "partial")
	check("2024-03-03", func(c Cell) bool { return c.Tone == ToneSkipped && c.Lunch == meal.StatusUnset }, "skipped")
	check("2024-03-04", func(c Cell) bool { return c.Tone == ToneNone }, "none")
}

// TestIsFuture tests midnight comparison.
func TestIsFuture(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	if IsFuture(time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), today) {
		t.Error("later today is not future")
	}
	if !IsFuture(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), today) {
		t.Error("tomorrow is future")
	}
	if IsFuture(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), today) {
		t.Error("yesterday is not future")
	}
}

// TestHeaders tests week-order labels.
func TestHeaders(t *testing.T) {
	if got := Headers(time.Monday); got[0] != "Mon" || got[6] != "Sun" {
		t.Errorf("monday headers = %v", got)
	}
	if got := Headers(time.Sunday); got[0] != "Sun" || got[6] != "Sat" {
		t.Errorf("sunday headers = %v", got)
	}
}

// TestMonthRange_Shift tests month arithmetic.
func TestMonthRange_Shift(t *testing.T) {
	from, to := MonthRange(2024, time.February)
	if from != "2024-02-01" || to != "2024-02-29" {
		t.Errorf("MonthRange = %s..%s", from, to)
	}
	if y, m := Shift(2024, time.January, -1); y != 2023 || m != time.December {
		t.Errorf("Shift back = %d-%d", y, m)
	}
	if y, m := Shift(2024, time.December, 1); y != 2025 || m != time.January {
		t.Errorf("Shift forward = %d-%d", y, m)
	}
}

// TestDrop tests payload decoding and ignore rules.
func TestDrop(t *testing.T) {
	target := Cell{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Key: "2024-03-05"}
	var got DropPayload
	var gotDate time.Time
	relocate := func(d time.Time, p DropPayload) { gotDate, got = d, p }

	if !Drop(target, []byte(`{"fromKey":"2024-03-01","taskId":"t1"}`), relocate) {
		t.Fatal("valid drop ignored")
	}
	if got.FromKey != "2024-03-01" || got.TaskID != "t1" || !gotDate.Equal(target.Date) {
		t.Errorf("relocate got %v %+v", gotDate, got)
	}

	for name, tc := range map[string]struct {
		cell Cell
		raw  string
	}{
		"placeholder":  {Cell{Placeholder: true}, `{"fromKey":"a","taskId":"b"}`},
		"bad json":     {target, `{fromKey`},
		"missing task": {target, `{"fromKey":"a"}`},
	} {
		if Drop(tc.cell, []byte(tc.raw), relocate) {
			t.Errorf("%s: drop should be ignored", name)
		}
	}
}

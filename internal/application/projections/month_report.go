package projections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"mydaylog/internal/domain/meal"
)

// GetMonthReportQuery carries input for the monthly report projection.
type GetMonthReportQuery struct {
	AccountID string
	Name      string
	Year      int
	Month     time.Month
	Today     time.Time
	WeekStart time.Weekday
}

// QueryGetMonthReport renders a month of meals as a markdown document:
// a summary table per slot, the streak, then one row per recorded day.
func QueryGetMonthReport(ctx context.Context, query GetMonthReportQuery, store MealRangeStore) (string, error) {
	summary, err := QueryGetMealStats(ctx, GetMealStatsQuery{
		AccountID: query.AccountID,
		Year:      query.Year,
		Month:     query.Month,
		Today:     query.Today,
		WeekStart: query.WeekStart,
	}, store)
	if err != nil {
		return "", err
	}
	from := time.Date(query.Year, query.Month, 1, 0, 0, 0, 0, time.Local)
	days, err := store.ListRange(ctx, query.AccountID, meal.DateKey(from), meal.DateKey(from.AddDate(0, 1, -1)))
	if err != nil {
		return "", fmt.Errorf("failed to list meals: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Meal report: %s %d\n\n", query.Month, query.Year)
	if query.Name != "" {
		fmt.Fprintf(&b, "For %s.\n\n", escapeCell(query.Name))
	}
	b.WriteString("| Meal | Received | Skipped | Unset | Received % |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, row := range []struct {
		name string
		t    meal.Tally
	}{{"Lunch", summary.Month.Lunch}, {"Dinner", summary.Month.Dinner}} {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d%% |\n", row.name, row.t.Received, row.t.Skipped, row.t.Unset, row.t.Pct)
	}
	fmt.Fprintf(&b, "\nCurrent streak: **%d** day(s) with both meals received.\n", summary.Streak)

	if len(days) == 0 {
		b.WriteString("\nNo meals recorded this month.\n")
		return b.String(), nil
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n## Days\n\n| Date | Lunch | Dinner | Notes |\n|---|---|---|---|\n")
	for _, k := range keys {
		d := days[k]
		var notes []string
		for _, slot := range meal.Slots {
			if e := d.Get(slot); e != nil && e.Reason != "" {
				notes = append(notes, fmt.Sprintf("%s: %s", slot, escapeCell(e.Reason)))
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", k, cellStatus(d, meal.Lunch), cellStatus(d, meal.Dinner), strings.Join(notes, "; "))
	}
	return b.String(), nil
}

func cellStatus(d meal.Day, slot meal.Slot) string {
	if s := d.StatusOf(slot); s != meal.StatusUnset {
		return string(s)
	}
	return "-"
}

// escapeCell keeps free text from breaking table or markdown structure.
func escapeCell(s string) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

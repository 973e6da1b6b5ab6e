package projections

import (
	"context"
	"fmt"
	"time"

	"mydaylog/internal/domain/meal"
)

// streakLookback bounds how far back a streak is counted.
const streakLookback = 365

// GetMealStatsQuery carries input for the stats projection.
type GetMealStatsQuery struct {
	AccountID string
	Year      int
	Month     time.Month
	Today     time.Time
	WeekStart time.Weekday
}

// QueryGetMealStats computes week and month tallies per slot and the current streak.
// PRE: Today is a local date
// POST: every tally satisfies Received+Skipped+Unset == Total
func QueryGetMealStats(ctx context.Context, query GetMealStatsQuery, store MealRangeStore) (meal.Summary, error) {
	today := meal.Midnight(query.Today)
	monthFirst := time.Date(query.Year, query.Month, 1, 0, 0, 0, 0, today.Location())
	monthLast := monthFirst.AddDate(0, 1, -1)

	from := minTime(monthFirst, today.AddDate(0, 0, -streakLookback))
	to := maxTime(monthLast, today.AddDate(0, 0, 6))

	days, err := store.ListRange(ctx, query.AccountID, meal.DateKey(from), meal.DateKey(to))
	if err != nil {
		return meal.Summary{}, fmt.Errorf("failed to list meals: %w", err)
	}
	return meal.Summarize(days, today, query.Year, query.Month, query.WeekStart), nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

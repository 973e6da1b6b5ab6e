package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mydaylog/internal/domain/meal"
)

// MaxRangeDays caps the span of one range query.
const MaxRangeDays = 366

// ErrInvalidRange is returned when from/to are malformed, reversed or too wide.
var ErrInvalidRange = errors.New("from and to must be YYYY-MM-DD, from <= to, at most 366 days apart")

// MealRangeStore defines the meal store interface needed by the meal projections.
type MealRangeStore interface {
	ListRange(ctx context.Context, accountID, from, to string) (meal.Month, error)
}

// GetMealsQuery carries input for the meals projection.
type GetMealsQuery struct {
	AccountID string
	From      string
	To        string
}

// QueryGetMeals returns the non-empty days of an account between From and To inclusive.
// PRE: none
// POST: returned map never holds an empty day
func QueryGetMeals(ctx context.Context, query GetMealsQuery, store MealRangeStore) (meal.Month, error) {
	from, err := meal.ParseDate(query.From)
	if err != nil {
		return nil, ErrInvalidRange
	}
	to, err := meal.ParseDate(query.To)
	if err != nil || to.Before(from) || to.Sub(from) > MaxRangeDays*24*time.Hour {
		return nil, ErrInvalidRange
	}
	days, err := store.ListRange(ctx, query.AccountID, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return days, nil
}

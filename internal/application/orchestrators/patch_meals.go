package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mydaylog/internal/domain/meal"
)

// MaxBulkPatches caps the number of dates in one bulk request.
const MaxBulkPatches = 366

// Patch errors
var (
	ErrNoPatches      = errors.New("items must contain at least one patch")
	ErrTooManyPatches = errors.New("items cannot exceed 366 patches")
	ErrFutureDate     = errors.New("cannot edit future dates")
)

// MealStoreForPatch defines the store interface needed by PatchMeals.
type MealStoreForPatch interface {
	ApplyPatches(ctx context.Context, accountID string, patches []meal.Patch) (meal.Month, error)
}

// PatchMealsInput carries input for the patch-meals orchestrator.
type PatchMealsInput struct {
	AccountID string
	Patches   []meal.Patch
}

// PatchMealsDeps holds dependencies for PatchMeals.
type PatchMealsDeps struct {
	MealStore MealStoreForPatch
	Now       Clock
	// FutureSlackDays tolerates clients whose day starts before the server's.
	FutureSlackDays int
}

// ExecutePatchMeals validates and applies one or more patches atomically.
// PRE: none
// POST: either every patch is applied or none is; returns the touched days
// after the write, with cleared days absent
// INVARIANT: no date later than today plus FutureSlackDays is written
func ExecutePatchMeals(ctx context.Context, input PatchMealsInput, deps PatchMealsDeps) (meal.Month, error) {
	if len(input.Patches) == 0 {
		return nil, ErrNoPatches
	}
	if len(input.Patches) > MaxBulkPatches {
		return nil, ErrTooManyPatches
	}

	now := deps.Now.now()
	limit := meal.Midnight(now).AddDate(0, 0, deps.FutureSlackDays)
	for i, p := range input.Patches {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		d, _ := meal.ParseDate(p.Date)
		if d.After(limit) {
			return nil, fmt.Errorf("item %d: %w", i, ErrFutureDate)
		}
	}

	days, err := deps.MealStore.ApplyPatches(ctx, input.AccountID, input.Patches)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patches: %w", err)
	}
	slog.Info("meal_event", "event", "patched", "account_id", input.AccountID, "dates", len(input.Patches))
	return days, nil
}

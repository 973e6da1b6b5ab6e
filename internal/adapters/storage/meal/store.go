package meal

import (
	"context"

	domain "mydaylog/internal/domain/meal"
)

// Store persists per-date meal entries of an account.
type Store interface {
	ListRange(ctx context.Context, accountID, from, to string) (domain.Month, error)
	ApplyPatches(ctx context.Context, accountID string, patches []domain.Patch) (domain.Month, error)
}

package orchestrators

import (
	"context"
	"log/slog"
)

// AccountStoreForDelete defines the store interface needed by DeleteAccount.
type AccountStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// ExecuteDeleteAccount removes an account. Meals, settings, reminder history
// and refresh tokens go with it through foreign-key cascades.
// PRE: accountID identifies an authenticated account
// POST: no row references accountID
func ExecuteDeleteAccount(ctx context.Context, accountID string, store AccountStoreForDelete) error {
	if err := store.Delete(ctx, accountID); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "account_deleted", "account_id", accountID)
	return nil
}

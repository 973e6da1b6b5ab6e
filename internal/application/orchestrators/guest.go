package orchestrators

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"mydaylog/internal/domain/account"
)

// AccountStoreForGuest defines the store interface needed by Guest.
type AccountStoreForGuest interface {
	RefreshTokenSaver
	Save(ctx context.Context, a account.Account) error
}

// GuestDeps holds dependencies for Guest.
type GuestDeps struct {
	AccountStore AccountStoreForGuest
	Now          Clock
}

// ExecuteGuest creates an anonymous account and signs it in.
// POST: the account has no PIN and a generated address under GuestEmailDomain
func ExecuteGuest(ctx context.Context, deps GuestDeps) (SessionResult, error) {
	now := deps.Now.now()
	id := uuid.NewString()
	acct := account.Account{
		ID:        id,
		Email:     "guest-" + id + "@" + account.GuestEmailDomain,
		Guest:     true,
		CreatedAt: now,
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return SessionResult{}, err
	}
	slog.Info("auth_event", "event", "guest_created", "account_id", id)
	return issueSession(ctx, deps.AccountStore, acct, now)
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/domain/account"
)

// AccountStoreForUpdateProfile defines the store interface needed by UpdateProfile.
type AccountStoreForUpdateProfile interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// UpdateProfileInput carries input for the update-profile orchestrator.
type UpdateProfileInput struct {
	AccountID string
	FullName  string
	Email     string
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	AccountStore AccountStoreForUpdateProfile
}

// ExecuteUpdateProfile changes the name and email of a registered account.
// PRE: AccountID identifies an authenticated account
// POST: returns the saved account
// INVARIANT: guests cannot change their identity
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (account.Account, error) {
	fullName := strings.Join(strings.Fields(input.FullName), " ")
	if err := account.ValidateFullName(fullName); err != nil {
		return account.Account{}, err
	}
	if err := account.ValidateEmail(input.Email); err != nil {
		return account.Account{}, err
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return account.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	if acct.Guest {
		return account.Account{}, account.ErrGuestNotEditable
	}

	email := account.NormalizeEmail(input.Email)
	if email != acct.Email {
		other, err := deps.AccountStore.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != acct.ID:
			return account.Account{}, account.ErrEmailAlreadyTaken
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return account.Account{}, err
		}
	}

	acct.FullName = fullName
	acct.Email = email
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}
	slog.Info("auth_event", "event", "profile_updated", "account_id", acct.ID)
	return acct, nil
}

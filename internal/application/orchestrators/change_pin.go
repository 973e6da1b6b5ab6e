package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"mydaylog/internal/domain/account"
)

// AccountStoreForChangePIN defines the store interface needed by ChangePIN.
type AccountStoreForChangePIN interface {
	RefreshTokenSaver
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	DeleteRefreshTokensForAccount(ctx context.Context, accountID string) error
}

// ChangePINInput carries input for the change-PIN orchestrator.
type ChangePINInput struct {
	AccountID  string
	CurrentPIN string
	NewPIN     string
	ConfirmPIN string
}

// ChangePINDeps holds dependencies for ChangePIN.
type ChangePINDeps struct {
	AccountStore AccountStoreForChangePIN
	Now          Clock
}

// ExecuteChangePIN verifies the current PIN and replaces it.
// PRE: AccountID identifies an authenticated account
// POST: every other session is signed out; the caller gets a fresh refresh token
func ExecuteChangePIN(ctx context.Context, input ChangePINInput, deps ChangePINDeps) (SessionResult, error) {
	if err := account.ValidatePIN(input.NewPIN); err != nil {
		return SessionResult{}, err
	}
	if input.NewPIN != input.ConfirmPIN {
		return SessionResult{}, account.ErrPINMismatch
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to load account: %w", err)
	}
	if acct.Guest {
		return SessionResult{}, account.ErrGuestNotEditable
	}
	if err := acct.CheckPIN(input.CurrentPIN); err != nil {
		return SessionResult{}, err
	}
	if err := acct.SetPIN(input.NewPIN); err != nil {
		return SessionResult{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return SessionResult{}, err
	}
	if err := deps.AccountStore.DeleteRefreshTokensForAccount(ctx, acct.ID); err != nil {
		return SessionResult{}, err
	}

	slog.Info("auth_event", "event", "pin_changed", "account_id", acct.ID)
	return issueSession(ctx, deps.AccountStore, acct, deps.Now.now())
}

package orchestrators

import (
	"context"
	"log/slog"

	"mydaylog/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	RefreshTokenSaver
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email string
	PIN   string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          Clock
}

// ExecuteLogin validates credentials and issues a refresh token.
// PRE: none
// POST: on success the failed-login counter is reset; on a wrong PIN it is incremented
// INVARIANT: a locked account cannot sign in until LockedUntil passes
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (SessionResult, error) {
	if account.ValidateEmail(input.Email) != nil || account.ValidatePIN(input.PIN) != nil {
		return SessionResult{}, ErrInvalidCredentials
	}
	email := account.NormalizeEmail(input.Email)

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return SessionResult{}, ErrInvalidCredentials
	}
	if acct.Guest {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "guest")
		return SessionResult{}, ErrInvalidCredentials
	}

	now := deps.Now.now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return SessionResult{}, account.ErrAccountLocked
	}

	if err := acct.CheckPIN(input.PIN); err != nil {
		acct.RecordFailedLogin(now)
		_ = deps.AccountStore.Save(ctx, acct)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_pin", "failed_logins", acct.FailedLogins)
		return SessionResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		_ = deps.AccountStore.Save(ctx, acct)
	}

	slog.Info("auth_event", "event", "login_success", "account_id", acct.ID)
	return issueSession(ctx, deps.AccountStore, acct, now)
}

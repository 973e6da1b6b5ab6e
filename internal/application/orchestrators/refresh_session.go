package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/domain/account"
)

// AccountStoreForRefresh defines the store interface needed by RefreshSession.
type AccountStoreForRefresh interface {
	RefreshTokenSaver
	GetByID(ctx context.Context, id string) (account.Account, error)
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (account.RefreshToken, error)
}

// RefreshDeps holds dependencies for RefreshSession.
type RefreshDeps struct {
	AccountStore AccountStoreForRefresh
	Now          Clock
}

// ExecuteRefreshSession exchanges a refresh token for a new one.
// PRE: raw is the cookie value, possibly empty
// POST: the presented token is revoked and a new one issued (rotation)
// INVARIANT: a refresh token is usable at most once
func ExecuteRefreshSession(ctx context.Context, raw string, deps RefreshDeps) (SessionResult, error) {
	if raw == "" {
		return SessionResult{}, account.ErrRefreshInvalid
	}
	tok, err := deps.AccountStore.ConsumeRefreshToken(ctx, HashRefreshToken(raw))
	if errors.Is(err, storage.ErrNotFound) {
		return SessionResult{}, account.ErrRefreshInvalid
	}
	if err != nil {
		return SessionResult{}, err
	}

	now := deps.Now.now()
	if tok.IsExpired(now) {
		slog.Info("auth_event", "event", "refresh_expired", "account_id", tok.AccountID)
		return SessionResult{}, account.ErrRefreshInvalid
	}
	acct, err := deps.AccountStore.GetByID(ctx, tok.AccountID)
	if err != nil {
		return SessionResult{}, account.ErrRefreshInvalid
	}

	slog.Debug("auth_event", "event", "refresh", "account_id", acct.ID)
	return issueSession(ctx, deps.AccountStore, acct, now)
}

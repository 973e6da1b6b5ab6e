package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"mydaylog/internal/adapters/storage"
)

// RefreshTokenDeleter revokes one refresh token.
type RefreshTokenDeleter interface {
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
}

// ExecuteLogout revokes the presented refresh token. Unknown tokens are ignored.
// POST: the token can no longer be exchanged
func ExecuteLogout(ctx context.Context, raw string, store RefreshTokenDeleter) error {
	if raw == "" {
		return nil
	}
	if err := store.DeleteRefreshToken(ctx, HashRefreshToken(raw)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

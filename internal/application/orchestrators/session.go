package orchestrators

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mydaylog/internal/domain/account"
)

// ErrInvalidCredentials is returned for an unknown email, a guest email or a wrong PIN.
var ErrInvalidCredentials = errors.New("invalid email or PIN")

// RefreshTokenSaver persists newly issued refresh tokens.
type RefreshTokenSaver interface {
	SaveRefreshToken(ctx context.Context, token account.RefreshToken) error
}

// SessionResult is an authenticated account plus the refresh token issued for it.
// The access token is minted by the HTTP layer.
type SessionResult struct {
	Account          account.Account
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// HashRefreshToken returns the stored form of a raw refresh token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// issueSession creates and stores a refresh token for acct.
// POST: only the hash of the returned raw token is persisted
func issueSession(ctx context.Context, store RefreshTokenSaver, acct account.Account, now time.Time) (SessionResult, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return SessionResult{}, err
	}
	raw := hex.EncodeToString(buf)
	token := account.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: acct.ID,
		TokenHash: HashRefreshToken(raw),
		ExpiresAt: now.Add(account.RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := store.SaveRefreshToken(ctx, token); err != nil {
		return SessionResult{}, fmt.Errorf("failed to save refresh token: %w", err)
	}
	return SessionResult{Account: acct, RefreshToken: raw, RefreshExpiresAt: token.ExpiresAt}, nil
}

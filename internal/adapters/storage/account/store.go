package account

import (
	"context"

	domain "mydaylog/internal/domain/account"
)

// Store persists accounts and their refresh tokens.
// Lookups of a missing row return an error wrapping storage.ErrNotFound.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	// GetByEmail matches the normalized email.
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	// Save inserts or replaces by ID.
	// POST: domain.ErrEmailAlreadyTaken when another account owns the email
	Save(ctx context.Context, acc domain.Account) error
	// Delete removes the account; dependent rows cascade.
	Delete(ctx context.Context, id string) error

	SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
	// ConsumeRefreshToken deletes and returns the token in one step, so a
	// token can rotate only once.
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteRefreshTokensForAccount(ctx context.Context, accountID string) error
}

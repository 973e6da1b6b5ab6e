package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/domain/account"
)

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	RefreshTokenSaver
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// RegisterInput carries input for the register orchestrator.
type RegisterInput struct {
	FullName   string
	Email      string
	PIN        string
	ConfirmPIN string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
	Now          Clock
}

// ExecuteRegister creates an account and signs it in.
// PRE: none; all fields are validated here
// POST: account persisted with a bcrypt PIN hash; a refresh token is issued
// INVARIANT: emails are unique case-insensitively
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (SessionResult, error) {
	fullName := strings.Join(strings.Fields(input.FullName), " ")
	if err := account.ValidateFullName(fullName); err != nil {
		return SessionResult{}, err
	}
	if err := account.ValidateEmail(input.Email); err != nil {
		return SessionResult{}, err
	}
	if err := account.ValidatePIN(input.PIN); err != nil {
		return SessionResult{}, err
	}
	if input.PIN != input.ConfirmPIN {
		return SessionResult{}, account.ErrPINMismatch
	}

	email := account.NormalizeEmail(input.Email)
	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return SessionResult{}, account.ErrEmailAlreadyTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return SessionResult{}, fmt.Errorf("failed to check email: %w", err)
	}

	now := deps.Now.now()
	acct := account.Account{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
	}
	if err := acct.SetPIN(input.PIN); err != nil {
		return SessionResult{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return SessionResult{}, err
	}

	slog.Info("auth_event", "event", "register", "account_id", acct.ID)
	return issueSession(ctx, deps.AccountStore, acct, now)
}

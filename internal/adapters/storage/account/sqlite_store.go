package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mydaylog/internal/adapters/storage"
	domain "mydaylog/internal/domain/account"
)

const accountColumns = "id, email, full_name, pin_hash, guest, created_at, failed_logins, locked_until"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanOne(row.Scan)
}

// GetByEmail retrieves an Account by normalized email.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", domain.NormalizeEmail(email))
	return scanOne(row.Scan)
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; a duplicate email yields domain.ErrEmailAlreadyTaken
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	query := "INSERT INTO account (" + accountColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?) " +
		"ON CONFLICT(id) DO UPDATE SET " +
		"email=excluded.email, full_name=excluded.full_name, pin_hash=excluded.pin_hash, " +
		"guest=excluded.guest, failed_logins=excluded.failed_logins, locked_until=excluded.locked_until"

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		strings.TrimSpace(entity.FullName),
		entity.PINHash,
		entity.Guest,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.NullTime(entity.LockedUntil),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailAlreadyTaken
	}
	return err
}

// Delete removes an Account; dependent rows cascade.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// SaveRefreshToken stores a newly issued refresh token.
// PRE: token.TokenHash is the SHA-256 of the opaque value
// POST: token is persisted
func (s *SQLiteStore) SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_token (id, account_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		token.ID, token.AccountID, token.TokenHash,
		storage.FormatTime(token.ExpiresAt), storage.FormatTime(token.CreatedAt),
	)
	return err
}

// GetRefreshToken looks a refresh token up by hash.
// POST: Returns the token or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	return scanRefreshToken(s.db.QueryRowContext(ctx,
		"SELECT "+refreshTokenColumns+" FROM refresh_token WHERE token_hash = ?", tokenHash,
	).Scan)
}

// ConsumeRefreshToken deletes a refresh token and returns it in one statement,
// so two concurrent exchanges of the same token cannot both succeed.
// POST: Returns the deleted token or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) ConsumeRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	return scanRefreshToken(s.db.QueryRowContext(ctx,
		"DELETE FROM refresh_token WHERE token_hash = ? RETURNING "+refreshTokenColumns, tokenHash,
	).Scan)
}

const refreshTokenColumns = "id, account_id, token_hash, expires_at, created_at"

func scanRefreshToken(scan func(dest ...any) error) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	var expiresAt, createdAt string
	err := scan(&t.ID, &t.AccountID, &t.TokenHash, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RefreshToken{}, fmt.Errorf("refresh token: %w", storage.ErrNotFound)
	}
	if err != nil {
		return domain.RefreshToken{}, err
	}
	t.ExpiresAt, _ = storage.ParseTime(expiresAt)
	t.CreatedAt, _ = storage.ParseTime(createdAt)
	return t, nil
}

// DeleteRefreshToken revokes one refresh token.
func (s *SQLiteStore) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM refresh_token WHERE token_hash = ?", tokenHash)
	return err
}

// DeleteRefreshTokensForAccount revokes every refresh token of an account.
// POST: no refresh token for accountID remains
func (s *SQLiteStore) DeleteRefreshTokensForAccount(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM refresh_token WHERE account_id = ?", accountID)
	return err
}

func scanOne(scan func(dest ...any) error) (domain.Account, error) {
	entity, err := scanAccount(scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account: %w", storage.ErrNotFound)
	}
	return entity, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.FullName,
		&entity.PINHash,
		&entity.Guest,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = storage.ParseTime(lockedUntil.String)
	}
	return entity, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

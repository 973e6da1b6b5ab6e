package account

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 100
)

// Lockout policy
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// GuestEmailDomain is the address suffix used for generated guest accounts.
const GuestEmailDomain = "guest.mydaylog.local"

// Domain errors
var (
	ErrEmptyEmail        = errors.New("email is required")
	ErrInvalidEmail      = errors.New("enter a valid email address")
	ErrEmailTooLong      = errors.New("email cannot exceed 254 characters")
	ErrEmptyFullName     = errors.New("full name is required")
	ErrFullNameTooLong   = errors.New("full name cannot exceed 100 characters")
	ErrInvalidFullName   = errors.New("enter your first and last name using letters only")
	ErrInvalidPIN        = errors.New("PIN must be exactly 4 digits")
	ErrPINMismatch       = errors.New("PINs do not match")
	ErrWrongPIN          = errors.New("incorrect PIN")
	ErrAccountLocked     = errors.New("account is temporarily locked")
	ErrGuestNotEditable  = errors.New("guest accounts cannot change credentials")
	ErrEmailAlreadyTaken = errors.New("an account with this email already exists")
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	pinPattern      = regexp.MustCompile(`^\d{4}$`)
	fullNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z'\- ]*[A-Za-z]$`)
	namePartPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-]*[A-Za-z]$`)
)

// Account holds state for the Account concept.
type Account struct {
	ID           string
	Email        string
	FullName     string
	PINHash      string
	Guest        bool
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if a.Guest {
		return nil
	}
	return ValidateFullName(a.FullName)
}

// ValidateEmail checks an address is present, bounded and well formed.
// PRE: none
// POST: Returns nil if valid, a domain error otherwise
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePIN checks a PIN is exactly four ASCII digits.
func ValidatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

// ValidateFullName requires at least two words of letters, apostrophes or hyphens,
// each at least two characters long.
// PRE: none
// POST: Returns nil if valid, a domain error otherwise
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFullName
	}
	if len(name) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if !fullNamePattern.MatchString(name) {
		return ErrInvalidFullName
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return ErrInvalidFullName
	}
	for _, p := range parts {
		if len(p) < 2 || !namePartPattern.MatchString(p) {
			return ErrInvalidFullName
		}
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPIN hashes and stores a PIN using bcrypt.
// PRE: pin is four digits
// POST: PINHash is set to bcrypt hash
func (a *Account) SetPIN(pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PINHash = string(hash)
	return nil
}

// CheckPIN verifies a plaintext PIN against the stored hash.
// PRE: PINHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPIN(pin string) error {
	if a.PINHash == "" {
		return ErrWrongPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PINHash), []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	return nil
}

// IsLocked returns true if the account is locked out at now.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// after MaxFailedLogins failures.
// PRE: Account exists
// POST: FailedLogins incremented; LockedUntil set if the threshold is reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// PRE: Account exists
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// FirstName returns the first word of the full name, or "" for guests.
// INVARIANT: Account fields are not mutated
func (a *Account) FirstName() string {
	if parts := strings.Fields(a.FullName); len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// Token lifetimes
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// ErrRefreshInvalid is returned for an unknown, revoked or expired refresh token.
var ErrRefreshInvalid = errors.New("session expired, please sign in again")

// RefreshToken is a long-lived credential exchanged for new access tokens.
// Only the SHA-256 of the opaque token is stored.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the refresh token has expired.
// INVARIANT: Token fields are not mutated
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

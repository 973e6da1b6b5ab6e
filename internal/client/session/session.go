// Package session tracks who is signed in and runs the account flows,
// validating input before anything is sent.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mydaylog/internal/client/gateway"
	"mydaylog/internal/client/localstate"
	"mydaylog/internal/domain/account"
)

// Status is the authentication state.
type Status int

// Status constants
const (
	Unknown Status = iota // before Init
	Anonymous
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// ValidationError is a form error caught before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrNotSignedIn is returned by account operations without a session.
var ErrNotSignedIn = errors.New("not signed in")

// API is the subset of the gateway used for accounts.
type API interface {
	Login(ctx context.Context, email, pin string) (gateway.User, error)
	Signup(ctx context.Context, fullName, email, pin, confirmPIN string) (gateway.User, error)
	Guest(ctx context.Context) (gateway.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (gateway.User, error)
	UpdateProfile(ctx context.Context, fullName, email string) (gateway.User, error)
	ChangePIN(ctx context.Context, current, next, confirm string) error
	DeleteAccount(ctx context.Context) error
}

// StateStore persists the had-session flag.
type StateStore interface {
	Get() localstate.State
	Update(fn func(*localstate.State)) error
}

// Store holds the current identity.
type Store struct {
	api   API
	state StateStore

	mu     sync.RWMutex
	status Status
	user   gateway.User
}

// New returns a store in the Unknown state.
func New(api API, state StateStore) *Store {
	return &Store{api: api, state: state}
}

// Init restores the session. Without a previous session no request is made.
// A rejected session clears the flag; other failures keep it so the next
// start tries again.
// POST: Status is Anonymous or Authenticated
func (s *Store) Init(ctx context.Context) error {
	if !s.state.Get().HadSession {
		s.set(Anonymous, gateway.User{})
		return nil
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		s.set(Anonymous, gateway.User{})
		if gateway.IsUnauthorized(err) {
			s.markSession(false)
			return nil
		}
		return err
	}
	s.set(Authenticated, u)
	return nil
}

// Status returns the authentication state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns the signed-in account.
func (s *Store) User() (gateway.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.status == Authenticated
}

// Login signs in with email and PIN.
func (s *Store) Login(ctx context.Context, email, pin string) (gateway.User, error) {
	if err := validateEmail(email); err != nil {
		return gateway.User{}, err
	}
	if err := validatePIN("pin", pin); err != nil {
		return gateway.User{}, err
	}
	return s.signIn(s.api.Login(ctx, strings.TrimSpace(email), pin))
}

// Signup creates an account and signs in.
func (s *Store) Signup(ctx context.Context, fullName, email, pin, confirmPIN string) (gateway.User, error) {
	if err := validateFullName(fullName); err != nil {
		return gateway.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return gateway.User{}, err
	}
	if err := validatePIN("pin", pin); err != nil {
		return gateway.User{}, err
	}
	if pin != confirmPIN {
		return gateway.User{}, &ValidationError{Field: "confirm_pin", Message: account.ErrPINMismatch.Error()}
	}
	return s.signIn(s.api.Signup(ctx, strings.TrimSpace(fullName), strings.TrimSpace(email), pin, confirmPIN))
}

// Guest starts an anonymous session.
func (s *Store) Guest(ctx context.Context) (gateway.User, error) {
	return s.signIn(s.api.Guest(ctx))
}

// Logout ends the session locally even when the server cannot be reached.
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.set(Anonymous, gateway.User{})
	s.markSession(false)
	return err
}

// UpdateProfile changes the full name and email.
func (s *Store) UpdateProfile(ctx context.Context, fullName, email string) (gateway.User, error) {
	if s.Status() != Authenticated {
		return gateway.User{}, ErrNotSignedIn
	}
	if err := validateFullName(fullName); err != nil {
		return gateway.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return gateway.User{}, err
	}
	u, err := s.api.UpdateProfile(ctx, strings.TrimSpace(fullName), strings.TrimSpace(email))
	if err != nil {
		return gateway.User{}, err
	}
	s.set(Authenticated, u)
	return u, nil
}

// ChangePIN replaces the PIN.
func (s *Store) ChangePIN(ctx context.Context, current, next, confirm string) error {
	if s.Status() != Authenticated {
		return ErrNotSignedIn
	}
	if next != confirm {
		return &ValidationError{Field: "confirm_pin", Message: account.ErrPINMismatch.Error()}
	}
	if err := validatePIN("current_pin", current); err != nil {
		return err
	}
	if err := validatePIN("new_pin", next); err != nil {
		return err
	}
	return s.api.ChangePIN(ctx, current, next, confirm)
}

// DeleteAccount removes the account and signs out.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if s.Status() != Authenticated {
		return ErrNotSignedIn
	}
	if err := s.api.DeleteAccount(ctx); err != nil {
		return err
	}
	s.set(Anonymous, gateway.User{})
	s.markSession(false)
	return nil
}

func (s *Store) signIn(u gateway.User, err error) (gateway.User, error) {
	if err != nil {
		return gateway.User{}, err
	}
	s.set(Authenticated, u)
	s.markSession(true)
	slog.Debug("session_event", "event", "signed_in", "user_id", u.ID, "guest", u.Guest)
	return u, nil
}

func (s *Store) set(status Status, u gateway.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.user = u
}

func (s *Store) markSession(had bool) {
	if err := s.state.Update(func(st *localstate.State) { st.HadSession = had }); err != nil {
		slog.Warn("session_event", "event", "state_save_failed", "error", err)
	}
}

func validateEmail(email string) error {
	if err := account.ValidateEmail(email); err != nil {
		return &ValidationError{Field: "email", Message: err.Error()}
	}
	return nil
}

func validatePIN(field, pin string) error {
	if err := account.ValidatePIN(pin); err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return nil
}

func validateFullName(name string) error {
	if err := account.ValidateFullName(name); err != nil {
		return &ValidationError{Field: "full_name", Message: err.Error()}
	}
	return nil
}

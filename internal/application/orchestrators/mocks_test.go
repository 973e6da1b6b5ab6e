package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mydaylog/internal/adapters/storage"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/domain/account"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/usersettings"
)

var testNow = time.Date(2024, 3, 10, 12, 30, 0, 0, time.Local)

func fixedClock() Clock { return func() time.Time { return testNow } }

// --- Mock account store ---

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	tokens   map[string]account.RefreshToken
	saveErr  error
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		accounts: make(map[string]account.Account),
		tokens:   make(map[string]account.RefreshToken),
	}
}

// GetByID retrieves a mock account by ID.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, fmt.Errorf("account: %w", storage.ErrNotFound)
	}
	return a, nil
}

// GetByEmail retrieves a mock account by normalized email.
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, fmt.Errorf("account: %w", storage.ErrNotFound)
}

// Save persists a mock account.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return nil
}

// Delete removes a mock account and its tokens.
func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	for h, t := range m.tokens {
		if t.AccountID == id {
			delete(m.tokens, h)
		}
	}
	return nil
}

// SaveRefreshToken stores a mock refresh token.
func (m *mockAccountStore) SaveRefreshToken(_ context.Context, t account.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.TokenHash] = t
	return nil
}

// ConsumeRefreshToken deletes and returns a mock refresh token.
func (m *mockAccountStore) ConsumeRefreshToken(_ context.Context, hash string) (account.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return account.RefreshToken{}, fmt.Errorf("refresh token: %w", storage.ErrNotFound)
	}
	delete(m.tokens, hash)
	return t, nil
}

// DeleteRefreshToken revokes a mock refresh token.
func (m *mockAccountStore) DeleteRefreshToken(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, hash)
	return nil
}

// DeleteRefreshTokensForAccount revokes all mock tokens of an account.
func (m *mockAccountStore) DeleteRefreshTokensForAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, t := range m.tokens {
		if t.AccountID == id {
			delete(m.tokens, h)
		}
	}
	return nil
}

func (m *mockAccountStore) tokenCount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}

// --- Mock meal store ---

type mockMealStore struct {
	days     map[string]meal.Month
	applyErr error
	calls    int
}

func newMockMealStore() *mockMealStore {
	return &mockMealStore{days: make(map[string]meal.Month)}
}

// ListRange returns the mock days between from and to inclusive.
func (m *mockMealStore) ListRange(_ context.Context, accountID, from, to string) (meal.Month, error) {
	out := meal.Month{}
	for k, d := range m.days[accountID] {
		if k >= from && k <= to {
			out[k] = d.Clone()
		}
	}
	return out, nil
}

// ApplyPatches applies patches in order to the mock days.
func (m *mockMealStore) ApplyPatches(_ context.Context, accountID string, patches []meal.Patch) (meal.Month, error) {
	m.calls++
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	if m.days[accountID] == nil {
		m.days[accountID] = meal.Month{}
	}
	out := meal.Month{}
	for _, p := range patches {
		next := p.Apply(m.days[accountID][p.Date])
		m.days[accountID].Put(p.Date, next)
		out.Put(p.Date, next)
	}
	return out, nil
}

// --- Mock settings store ---

type mockSettingsStore struct {
	settings map[string]usersettings.Settings
	targets  []settingsStore.ReminderTarget
	reminded map[string]bool
	saves    int
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{
		settings: make(map[string]usersettings.Settings),
		reminded: make(map[string]bool),
	}
}

// Get retrieves mock settings.
func (m *mockSettingsStore) Get(_ context.Context, userID string) (usersettings.Settings, error) {
	s, ok := m.settings[userID]
	if !ok {
		return usersettings.Settings{}, fmt.Errorf("user settings: %w", storage.ErrNotFound)
	}
	return s, nil
}

// Save persists mock settings.
func (m *mockSettingsStore) Save(_ context.Context, s usersettings.Settings) error {
	m.saves++
	m.settings[s.UserID] = s
	return nil
}

// ListDueReminders returns the configured targets.
func (m *mockSettingsStore) ListDueReminders(_ context.Context, _ string) ([]settingsStore.ReminderTarget, error) {
	return m.targets, nil
}

// MarkReminded records a reminder once per user and date.
func (m *mockSettingsStore) MarkReminded(_ context.Context, userID, date string) (bool, error) {
	key := userID + "|" + date
	if m.reminded[key] {
		return false, nil
	}
	m.reminded[key] = true
	return true, nil
}

var errBoom = errors.New("boom")

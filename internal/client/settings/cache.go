// Package settings is a read-through cache of the server-owned user settings.
// The server is the source of truth; the local mirror only makes the first
// paint instant.
package settings

import (
	"context"
	"log/slog"
	"sync"

	"mydaylog/internal/client/localstate"
	"mydaylog/internal/domain/usersettings"
)

// API is the remote side of the cache.
type API interface {
	GetSettings(ctx context.Context) (usersettings.Settings, error)
	UpdateSettings(ctx context.Context, p usersettings.Patch) (usersettings.Settings, error)
}

// StateStore persists the mirror.
type StateStore interface {
	Get() localstate.State
	Update(fn func(*localstate.State)) error
}

// Cache serves settings from memory after the first fetch.
type Cache struct {
	api   API
	state StateStore

	mu      sync.Mutex
	current usersettings.Settings
	fresh   bool // current came from the server in this process
}

// New returns a cache primed from the local mirror, or defaults without one.
func New(api API, state StateStore) *Cache {
	c := &Cache{api: api, state: state, current: usersettings.Defaults("")}
	st := state.Get()
	if st.Settings != nil {
		c.current = st.Settings.Settings()
	} else if st.Theme != "" {
		c.current.Theme = usersettings.Theme(st.Theme)
	}
	return c
}

// Peek returns the best known settings without any request.
func (c *Cache) Peek() usersettings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Get fetches once per process, then serves the cache. On a fetch error the
// mirrored value is returned with the error.
func (c *Cache) Get(ctx context.Context) (usersettings.Settings, error) {
	c.mu.Lock()
	if c.fresh {
		defer c.mu.Unlock()
		return c.current, nil
	}
	c.mu.Unlock()

	s, err := c.api.GetSettings(ctx)
	if err != nil {
		return c.Peek(), err
	}
	c.store(s)
	return s, nil
}

// Update sends a patch. On success the cache and mirror are replaced with the
// server's answer; on failure they keep the previous value.
func (c *Cache) Update(ctx context.Context, p usersettings.Patch) (usersettings.Settings, error) {
	s, err := c.api.UpdateSettings(ctx, p)
	if err != nil {
		return c.Peek(), err
	}
	c.store(s)
	return s, nil
}

// ToggleTheme flips between light and dark.
func (c *Cache) ToggleTheme(ctx context.Context) (usersettings.Settings, error) {
	next := c.Peek().Theme.Toggle()
	return c.Update(ctx, usersettings.Patch{Theme: &next})
}

// SetReminder enables the reminder at hhmm, or disables it.
func (c *Cache) SetReminder(ctx context.Context, enabled bool, hhmm string) (usersettings.Settings, error) {
	return c.Update(ctx, usersettings.ReminderPatch(enabled, hhmm))
}

// Invalidate forces the next Get to fetch, e.g. after switching accounts.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh = false
}

func (c *Cache) store(s usersettings.Settings) {
	c.mu.Lock()
	c.current = s
	c.fresh = true
	c.mu.Unlock()
	err := c.state.Update(func(st *localstate.State) {
		st.Settings = localstate.CopySettings(s)
		st.Theme = string(s.Theme)
	})
	if err != nil {
		slog.Warn("settings_event", "event", "mirror_failed", "error", err)
	}
}

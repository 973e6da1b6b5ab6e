// Package localstate persists the client's non-authoritative state in
// state.yaml: navigation, theme, session cookies and mirrors of
// server-owned data.
package localstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/usersettings"
)

// FileName is the state file inside the client config directory.
const FileName = "state.yaml"

// State is everything the client remembers between runs. None of it is
// authoritative: the server wins whenever it answers.
type State struct {
	LastMonth     string         `yaml:"last_month,omitempty"` // YYYY-MM
	Theme         string         `yaml:"theme,omitempty"`
	HadSession    bool           `yaml:"had_session"`
	ReminderFired string         `yaml:"reminder_fired,omitempty"` // date key
	Cookies       []Cookie       `yaml:"cookies,omitempty"`
	Settings      *SettingsCopy  `yaml:"settings,omitempty"`
	Meals         map[string]Day `yaml:"meals,omitempty"`
}

// SettingsCopy mirrors usersettings.Settings in the state file.
type SettingsCopy struct {
	UserID              string `yaml:"user_id"`
	DisplayName         string `yaml:"display_name"`
	Theme               string `yaml:"theme"`
	WeekStart           string `yaml:"week_start"`
	MealReminderEnabled bool   `yaml:"meal_reminder_enabled"`
	MealReminderTime    string `yaml:"meal_reminder_time"`
}

// CopySettings converts server settings to their mirrored form.
func CopySettings(s usersettings.Settings) *SettingsCopy {
	return &SettingsCopy{
		UserID:              s.UserID,
		DisplayName:         s.DisplayName,
		Theme:               string(s.Theme),
		WeekStart:           string(s.WeekStart),
		MealReminderEnabled: s.MealReminderEnabled,
		MealReminderTime:    s.MealReminderTime,
	}
}

// Settings converts the mirror back; timestamps are not kept.
func (c *SettingsCopy) Settings() usersettings.Settings {
	return usersettings.Settings{
		UserID:              c.UserID,
		DisplayName:         c.DisplayName,
		Theme:               usersettings.Theme(c.Theme),
		WeekStart:           usersettings.WeekStart(c.WeekStart),
		MealReminderEnabled: c.MealReminderEnabled,
		MealReminderTime:    c.MealReminderTime,
	}
}

// Store guards the state and rewrites the file on every update.
type Store struct {
	path  string
	mu    sync.Mutex
	state State
}

// Open loads dir/state.yaml. A missing file yields empty state; an unreadable
// one is reported so the caller can decide whether to start fresh.
// PRE: none
// POST: returned Store writes to dir/state.yaml
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, FileName)}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return s, fmt.Errorf("failed to parse state: %w", err)
	}
	return s, nil
}

// Memory returns a store that is never written to disk.
func Memory() *Store {
	return &Store{}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Cookies = append([]Cookie(nil), s.state.Cookies...)
	if s.state.Settings != nil {
		c := *s.state.Settings
		out.Settings = &c
	}
	if s.state.Meals != nil {
		out.Meals = make(map[string]Day, len(s.state.Meals))
		for k, v := range s.state.Meals {
			out.Meals[k] = v
		}
	}
	return out
}

// Update applies fn to the state and saves it.
// POST: on a write error the in-memory state is still updated
func (s *Store) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.save()
}

// save writes through a temp file so a crash never leaves half a state file.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

// MealMirror returns the mirrored meal map in domain form.
func (s *Store) MealMirror() meal.Month {
	st := s.Get()
	out := make(meal.Month, len(st.Meals))
	for k, d := range st.Meals {
		out.Put(k, d.Day())
	}
	return out
}

// SaveMeals replaces the meal mirror.
func (s *Store) SaveMeals(m meal.Month) error {
	return s.Update(func(st *State) {
		st.Meals = make(map[string]Day, len(m))
		for k, d := range m {
			st.Meals[k] = FromDay(d)
		}
	})
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/domain/usersettings"
)

// SettingsStore defines the store interface needed by the settings orchestrators.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (usersettings.Settings, error)
	Save(ctx context.Context, value usersettings.Settings) error
}

// SettingsDeps holds dependencies for GetUserSettings and UpdateUserSettings.
type SettingsDeps struct {
	SettingsStore SettingsStore
	Now           Clock
}

// ExecuteGetUserSettings returns the settings of userID, creating defaults on first read.
// POST: a settings row exists for userID
func ExecuteGetUserSettings(ctx context.Context, userID string, deps SettingsDeps) (usersettings.Settings, error) {
	s, err := deps.SettingsStore.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return usersettings.Settings{}, err
	}

	s = usersettings.Defaults(userID)
	now := deps.Now.now()
	s.CreatedAt, s.UpdatedAt = now, now
	if err := deps.SettingsStore.Save(ctx, s); err != nil {
		return usersettings.Settings{}, fmt.Errorf("failed to create default settings: %w", err)
	}
	return s, nil
}

// UpdateUserSettingsInput carries input for the update-settings orchestrator.
type UpdateUserSettingsInput struct {
	UserID string
	Patch  usersettings.Patch
}

// ExecuteUpdateUserSettings applies a partial update.
// PRE: none
// POST: the stored settings are valid; on error nothing is written
func ExecuteUpdateUserSettings(ctx context.Context, input UpdateUserSettingsInput, deps SettingsDeps) (usersettings.Settings, error) {
	cur, err := ExecuteGetUserSettings(ctx, input.UserID, deps)
	if err != nil {
		return usersettings.Settings{}, err
	}
	next, err := cur.Apply(input.Patch)
	if err != nil {
		return usersettings.Settings{}, err
	}
	next.UpdatedAt = deps.Now.now()
	if err := deps.SettingsStore.Save(ctx, next); err != nil {
		return usersettings.Settings{}, err
	}
	slog.Info("settings_event", "event", "updated", "user_id", input.UserID,
		"theme", next.Theme, "week_start", next.WeekStart, "reminder", next.ReminderTime())
	return next, nil
}

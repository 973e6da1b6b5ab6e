package orchestrators

import (
	"context"
	"errors"
	"testing"

	"mydaylog/internal/domain/usersettings"
)

// TestExecuteGetUserSettings_CreatesDefaults tests lazy creation.
func TestExecuteGetUserSettings_CreatesDefaults(t *testing.T) {
	store := newMockSettingsStore()
	deps := SettingsDeps{SettingsStore: store, Now: fixedClock()}

	s, err := ExecuteGetUserSettings(context.Background(), "u1", deps)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Theme != usersettings.ThemeLight || !s.CreatedAt.Equal(testNow) {
		t.Errorf("settings = %+v", s)
	}
	ExecuteGetUserSettings(context.Background(), "u1", deps)
	if store.saves != 1 {
		t.Errorf("saves = %d, want defaults written once", store.saves)
	}
}

// TestExecuteUpdateUserSettings tests patch application and rejection.
func TestExecuteUpdateUserSettings(t *testing.T) {
	store := newMockSettingsStore()
	deps := SettingsDeps{SettingsStore: store, Now: fixedClock()}
	ctx := context.Background()

	dark := usersettings.ThemeDark
	s, err := ExecuteUpdateUserSettings(ctx, UpdateUserSettingsInput{UserID: "u1", Patch: usersettings.Patch{Theme: &dark}}, deps)
	if err != nil || s.Theme != usersettings.ThemeDark {
		t.Fatalf("update = %+v, %v", s, err)
	}

	s, err = ExecuteUpdateUserSettings(ctx, UpdateUserSettingsInput{UserID: "u1", Patch: usersettings.ReminderPatch(true, "")}, deps)
	if err != nil || s.ReminderTime() != usersettings.DefaultReminderTime || s.Theme != usersettings.ThemeDark {
		t.Fatalf("reminder update = %+v, %v", s, err)
	}

	bad := "24:00"
	_, err = ExecuteUpdateUserSettings(ctx, UpdateUserSettingsInput{UserID: "u1", Patch: usersettings.Patch{MealReminderTime: &bad}}, deps)
	if !errors.Is(err, usersettings.ErrInvalidReminderTime) {
		t.Errorf("err = %v", err)
	}
	if got := store.settings["u1"]; got.MealReminderTime != usersettings.DefaultReminderTime {
		t.Errorf("invalid patch changed stored settings: %+v", got)
	}
}

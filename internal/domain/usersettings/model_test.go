package usersettings_test

import (
	"errors"
	"testing"
	"time"

	"mydaylog/internal/domain/usersettings"
)

// TestDefaults tests the initial settings of a new user.
func TestDefaults(t *testing.T) {
	s := usersettings.Defaults("u1")
	if s.Theme != usersettings.ThemeLight || s.WeekStart != usersettings.WeekStartMon {
		t.Errorf("Defaults() = %+v", s)
	}
	if s.MealReminderEnabled || s.ReminderTime() != "" {
		t.Error("reminder should start disabled")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

// TestSettings_Validate tests field validation.
func TestSettings_Validate(t *testing.T) {
	base := usersettings.Defaults("u1")
	tests := []struct {
		name   string
		modify func(s *usersettings.Settings)
		want   error
	}{
		{"defaults", func(s *usersettings.Settings) {}, nil},
		{"bad theme", func(s *usersettings.Settings) { s.Theme = "blue" }, usersettings.ErrInvalidTheme},
		{"bad week start", func(s *usersettings.Settings) { s.WeekStart = "Tue" }, usersettings.ErrInvalidWeekStart},
		{"bad time", func(s *usersettings.Settings) { s.MealReminderTime = "25:00" }, usersettings.ErrInvalidReminderTime},
		{"short time", func(s *usersettings.Settings) { s.MealReminderTime = "9:30" }, usersettings.ErrInvalidReminderTime},
		{"valid time", func(s *usersettings.Settings) { s.MealReminderTime = "23:59" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.modify(&s)
			if got := s.Validate(); !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSettings_Apply_Reminder tests reminder enable and disable rules.
func TestSettings_Apply_Reminder(t *testing.T) {
	s := usersettings.Defaults("u1")

	on, err := s.Apply(usersettings.ReminderPatch(true, ""))
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if on.ReminderTime() != usersettings.DefaultReminderTime {
		t.Errorf("enabled time = %q, want default", on.ReminderTime())
	}

	off, err := on.Apply(usersettings.ReminderPatch(false, ""))
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if off.MealReminderEnabled || off.MealReminderTime != "" {
		t.Errorf("disabled = %+v, want no time", off)
	}

	hhmm := "07:45"
	timed, err := off.Apply(usersettings.Patch{MealReminderTime: &hhmm})
	if err != nil {
		t.Fatalf("set time: %v", err)
	}
	if !timed.MealReminderEnabled || timed.ReminderTime() != "07:45" {
		t.Errorf("setting a time should enable the reminder: %+v", timed)
	}
}

// TestSettings_Apply_InvalidLeavesOriginal tests that a rejected patch returns the original.
func TestSettings_Apply_InvalidLeavesOriginal(t *testing.T) {
	s := usersettings.Defaults("u1")
	bad := usersettings.Theme("neon")
	got, err := s.Apply(usersettings.Patch{Theme: &bad})
	if !errors.Is(err, usersettings.ErrInvalidTheme) {
		t.Fatalf("Apply() err = %v, want ErrInvalidTheme", err)
	}
	if got.Theme != usersettings.ThemeLight {
		t.Errorf("theme = %q, want unchanged", got.Theme)
	}
	if _, err := s.Apply(usersettings.Patch{}); !errors.Is(err, usersettings.ErrEmptyPatch) {
		t.Errorf("empty patch err = %v", err)
	}
}

// TestWeekStart_Weekday tests conversion to time.Weekday.
func TestWeekStart_Weekday(t *testing.T) {
	if usersettings.WeekStartSun.Weekday() != time.Sunday {
		t.Error("Sun should map to time.Sunday")
	}
	if usersettings.WeekStartMon.Weekday() != time.Monday {
		t.Error("Mon should map to time.Monday")
	}
	if usersettings.ThemeLight.Toggle() != usersettings.ThemeDark {
		t.Error("light should toggle to dark")
	}
}

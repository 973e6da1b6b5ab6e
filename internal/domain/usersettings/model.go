package usersettings

import (
	"errors"
	"regexp"
	"time"
)

// Theme is the colour scheme of the client.
type Theme string

// Theme constants
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// WeekStart is the first column of the calendar.
type WeekStart string

// WeekStart constants
const (
	WeekStartMon WeekStart = "Mon"
	WeekStartSun WeekStart = "Sun"
)

// DefaultReminderTime is offered when a reminder is first enabled.
const DefaultReminderTime = "12:30"

// MaxDisplayNameLength caps the display name.
const MaxDisplayNameLength = 100

// Domain errors
var (
	ErrInvalidTheme        = errors.New("theme must be one of: light, dark")
	ErrInvalidWeekStart    = errors.New("week_start must be one of: Mon, Sun")
	ErrInvalidReminderTime = errors.New("meal_reminder_time must be HH:MM or empty")
	ErrDisplayNameTooLong  = errors.New("display name cannot exceed 100 characters")
	ErrEmptyPatch          = errors.New("settings patch must change at least one field")
)

var reminderTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Settings are the per-user preferences owned by the server.
type Settings struct {
	UserID              string    `json:"user_id"`
	DisplayName         string    `json:"display_name"`
	Theme               Theme     `json:"theme"`
	WeekStart           WeekStart `json:"week_start"`
	MealReminderEnabled bool      `json:"meal_reminder_enabled"`
	MealReminderTime    string    `json:"meal_reminder_time"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Patch is a partial settings update. Nil fields are left untouched.
type Patch struct {
	DisplayName         *string    `json:"display_name,omitempty"`
	Theme               *Theme     `json:"theme,omitempty"`
	WeekStart           *WeekStart `json:"week_start,omitempty"`
	MealReminderEnabled *bool      `json:"meal_reminder_enabled,omitempty"`
	MealReminderTime    *string    `json:"meal_reminder_time,omitempty"`
}

// Defaults returns the settings a user has before saving any.
// POST: light theme, Monday week start, reminder disabled
func Defaults(userID string) Settings {
	return Settings{
		UserID:    userID,
		Theme:     ThemeLight,
		WeekStart: WeekStartMon,
	}
}

// Validate checks field values.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Settings) Validate() error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return ErrInvalidTheme
	}
	if s.WeekStart != WeekStartMon && s.WeekStart != WeekStartSun {
		return ErrInvalidWeekStart
	}
	if s.MealReminderTime != "" && !reminderTimePattern.MatchString(s.MealReminderTime) {
		return ErrInvalidReminderTime
	}
	if len(s.DisplayName) > MaxDisplayNameLength {
		return ErrDisplayNameTooLong
	}
	return nil
}

// Apply returns s with the patch applied and validated. Disabling the reminder
// clears its time; an empty time disables it.
// PRE: none
// POST: returned Settings is valid or an error is returned; s is unchanged
func (s Settings) Apply(p Patch) (Settings, error) {
	if p.IsEmpty() {
		return s, ErrEmptyPatch
	}
	out := s
	if p.DisplayName != nil {
		out.DisplayName = *p.DisplayName
	}
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.WeekStart != nil {
		out.WeekStart = *p.WeekStart
	}
	if p.MealReminderTime != nil {
		out.MealReminderTime = *p.MealReminderTime
		out.MealReminderEnabled = out.MealReminderTime != ""
	}
	if p.MealReminderEnabled != nil {
		out.MealReminderEnabled = *p.MealReminderEnabled
		if !out.MealReminderEnabled {
			out.MealReminderTime = ""
		} else if out.MealReminderTime == "" {
			out.MealReminderTime = DefaultReminderTime
		}
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return out, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.DisplayName == nil && p.Theme == nil && p.WeekStart == nil &&
		p.MealReminderEnabled == nil && p.MealReminderTime == nil
}

// ReminderTime returns the effective reminder time, "" when disabled.
// INVARIANT: Settings is not mutated
func (s *Settings) ReminderTime() string {
	if !s.MealReminderEnabled {
		return ""
	}
	return s.MealReminderTime
}

// Weekday converts the week start to a time.Weekday; anything but Sun is Monday.
func (w WeekStart) Weekday() time.Weekday {
	if w == WeekStartSun {
		return time.Sunday
	}
	return time.Monday
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ReminderPatch builds the patch for enabling or disabling the reminder.
// Disabling sends an empty time; enabling without a time uses DefaultReminderTime.
func ReminderPatch(enabled bool, hhmm string) Patch {
	if !enabled {
		empty := ""
		off := false
		return Patch{MealReminderEnabled: &off, MealReminderTime: &empty}
	}
	if hhmm == "" {
		hhmm = DefaultReminderTime
	}
	on := true
	return Patch{MealReminderEnabled: &on, MealReminderTime: &hhmm}
}

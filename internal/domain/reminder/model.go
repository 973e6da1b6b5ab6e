package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mydaylog/internal/domain/meal"
)

// Reminder messages
const (
	MessageDue          = "Don't forget to set today's meals"
	MessageBothUnset    = "Today's meals are not yet set"
	MessageLunchUnset   = "Lunch status is not set yet"
	MessageDinnerUnset  = "Dinner status is not set yet"
	fallbackDisplayName = "there"
)

// ErrInvalidClock is returned for a malformed HH:MM value.
var ErrInvalidClock = errors.New("time must be HH:MM")

// Clock formats t as HH:MM in its own location.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// ParseClock splits an HH:MM string into hour and minute.
// PRE: none
// POST: returns 0 <= h < 24 and 0 <= m < 60, or ErrInvalidClock
func ParseClock(hhmm string) (h, m int, err error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, ErrInvalidClock
	}
	return t.Hour(), t.Minute(), nil
}

// Incomplete reports whether either slot of day has no status.
func Incomplete(day meal.Day) bool {
	return day.StatusOf(meal.Lunch) == meal.StatusUnset || day.StatusOf(meal.Dinner) == meal.StatusUnset
}

// Missing lists the slots of day that have no status, in display order.
func Missing(day meal.Day) []meal.Slot {
	var out []meal.Slot
	for _, slot := range meal.Slots {
		if day.StatusOf(slot) == meal.StatusUnset {
			out = append(out, slot)
		}
	}
	return out
}

// Due reports whether the reminder should fire at now.
// It fires only on the exact HH:MM minute, at most once per day, and only
// while today has an unset slot.
// PRE: hhmm is "" (disabled) or HH:MM
// POST: false whenever hhmm is empty or lastFired equals today's key
func Due(now time.Time, hhmm string, today meal.Day, lastFired string) bool {
	if hhmm == "" || Clock(now) != hhmm {
		return false
	}
	if lastFired == meal.DateKey(now) {
		return false
	}
	return Incomplete(today)
}

// Banner returns the persistent reminder text shown once the reminder time has passed.
// POST: ok is false when disabled, before the threshold, or when both slots are set
func Banner(now time.Time, hhmm string, today meal.Day) (msg string, ok bool) {
	if hhmm == "" {
		return "", false
	}
	h, m, err := ParseClock(hhmm)
	if err != nil {
		return "", false
	}
	threshold := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if now.Before(threshold) {
		return "", false
	}
	lunchSet := today.StatusOf(meal.Lunch) != meal.StatusUnset
	dinnerSet := today.StatusOf(meal.Dinner) != meal.StatusUnset
	switch {
	case lunchSet && dinnerSet:
		return "", false
	case lunchSet:
		return MessageDinnerUnset, true
	case dinnerSet:
		return MessageLunchUnset, true
	}
	return MessageBothUnset, true
}

// Greeting returns the time-of-day salutation for name.
func Greeting(now time.Time, name string) string {
	var g string
	switch h := now.Hour(); {
	case h < 5:
		g = "Good night"
	case h < 12:
		g = "Good morning"
	case h < 17:
		g = "Good afternoon"
	case h < 22:
		g = "Good evening"
	default:
		g = "Good night"
	}
	return fmt.Sprintf("%s, %s", g, name)
}

// FriendlyName picks the name to greet: display name, else the email's local part, else "there".
func FriendlyName(displayName, email string) string {
	if n := strings.TrimSpace(displayName); n != "" {
		return n
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return fallbackDisplayName
}

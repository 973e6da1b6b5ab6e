package usersettings

import (
	"context"

	domain "mydaylog/internal/domain/usersettings"
)

// ReminderTarget is an account whose reminder is due at a given minute.
type ReminderTarget struct {
	UserID      string
	Email       string
	DisplayName string
	FullName    string
}

// Store persists UserSettings and the reminder send log.
type Store interface {
	Get(ctx context.Context, userID string) (domain.Settings, error)
	Save(ctx context.Context, value domain.Settings) error
	ListDueReminders(ctx context.Context, hhmm string) ([]ReminderTarget, error)
	MarkReminded(ctx context.Context, userID, date string) (bool, error)
}

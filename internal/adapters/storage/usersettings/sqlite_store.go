package usersettings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mydaylog/internal/adapters/storage"
	domain "mydaylog/internal/domain/usersettings"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new settings store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get retrieves the settings row of a user.
// PRE: userID is non-empty
// POST: Returns the settings or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, userID string) (domain.Settings, error) {
	var v domain.Settings
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, display_name, theme, week_start, meal_reminder_enabled, meal_reminder_time, created_at, updated_at "+
			"FROM user_settings WHERE user_id = ?", userID,
	).Scan(&v.UserID, &v.DisplayName, &v.Theme, &v.WeekStart, &v.MealReminderEnabled, &v.MealReminderTime, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, fmt.Errorf("user settings: %w", storage.ErrNotFound)
	}
	if err != nil {
		return domain.Settings{}, err
	}
	v.CreatedAt, _ = storage.ParseTime(createdAt)
	v.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return v, nil
}

// Save upserts the settings row.
// PRE: value has been validated
// POST: row persisted; created_at is kept on update
func (s *SQLiteStore) Save(ctx context.Context, value domain.Settings) error {
	created := value.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	updated := value.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO user_settings (user_id, display_name, theme, week_start, meal_reminder_enabled, meal_reminder_time, created_at, updated_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(user_id) DO UPDATE SET "+
			"display_name=excluded.display_name, theme=excluded.theme, week_start=excluded.week_start, "+
			"meal_reminder_enabled=excluded.meal_reminder_enabled, meal_reminder_time=excluded.meal_reminder_time, "+
			"updated_at=excluded.updated_at",
		value.UserID, value.DisplayName, value.Theme, value.WeekStart,
		value.MealReminderEnabled, value.MealReminderTime,
		storage.FormatTime(created), storage.FormatTime(updated),
	)
	return err
}

// ListDueReminders returns non-guest accounts whose enabled reminder is set to hhmm.
// PRE: hhmm is HH:MM
func (s *SQLiteStore) ListDueReminders(ctx context.Context, hhmm string) ([]ReminderTarget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT a.id, a.email, us.display_name, a.full_name FROM user_settings us "+
			"JOIN account a ON a.id = us.user_id "+
			"WHERE us.meal_reminder_enabled = 1 AND us.meal_reminder_time = ? AND a.guest = 0 "+
			"ORDER BY a.id", hhmm,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderTarget
	for rows.Next() {
		var t ReminderTarget
		if err := rows.Scan(&t.UserID, &t.Email, &t.DisplayName, &t.FullName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkReminded records that a reminder went out for date.
// POST: returns true only for the first call per user and date
func (s *SQLiteStore) MarkReminded(ctx context.Context, userID, date string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO reminder_log (user_id, date, sent_at) VALUES (?, ?, ?)",
		userID, date, storage.FormatTime(s.now()),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

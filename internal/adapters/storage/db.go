package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// TimeFormat is the text layout of every timestamp column.
const TimeFormat = time.RFC3339Nano

// Open opens the SQLite database at path and applies connection pragmas.
// PRE: path is a file path or ":memory:"
// POST: returns a ready connection pool or an error
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		pin_hash TEXT NOT NULL DEFAULT '',
		guest INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS refresh_token (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS meal_entry (
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		slot TEXT NOT NULL CHECK (slot IN ('lunch', 'dinner')),
		status TEXT NOT NULL CHECK (status IN ('received', 'skipped')),
		reason TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (account_id, date, slot),
		FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		theme TEXT NOT NULL DEFAULT 'light',
		week_start TEXT NOT NULL DEFAULT 'Mon',
		meal_reminder_enabled INTEGER NOT NULL DEFAULT 0,
		meal_reminder_time TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reminder_log (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		sent_at TEXT NOT NULL,
		PRIMARY KEY (user_id, date),
		FOREIGN KEY (user_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_refresh_token_account ON refresh_token(account_id);
	CREATE INDEX IF NOT EXISTS idx_user_settings_reminder ON user_settings(meal_reminder_enabled, meal_reminder_time);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
// PRE: db is valid
// POST: fn's writes are applied atomically or not at all
func WithTx(ctx context.Context, db SQLDB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// FormatTime renders t for a TEXT column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// NullTime renders t for a nullable TEXT column; the zero time becomes NULL.
func NullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// ParseTime reads a timestamp written by FormatTime or by SQLite itself.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

package meal

import (
	"context"
	"database/sql"
	"time"

	"mydaylog/internal/adapters/storage"
	domain "mydaylog/internal/domain/meal"
)

// SQLiteStore implements Store using SQLite. Each slot is one row; a slot
// without a status has no row.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new meal store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ListRange returns every recorded day with from <= date <= to.
// PRE: from and to are YYYY-MM-DD
// POST: returned month holds no empty day
func (s *SQLiteStore) ListRange(ctx context.Context, accountID, from, to string) (domain.Month, error) {
	return listRange(ctx, s.db, accountID, from, to)
}

func listRange(ctx context.Context, q querier, accountID, from, to string) (domain.Month, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT date, slot, status, reason FROM meal_entry WHERE account_id = ? AND date >= ? AND date <= ? ORDER BY date",
		accountID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := domain.Month{}
	for rows.Next() {
		var date, slot, status, reason string
		if err := rows.Scan(&date, &slot, &status, &reason); err != nil {
			return nil, err
		}
		day := out[date].WithMark(domain.Slot(slot), domain.Mark(status))
		out.Put(date, day.WithReason(domain.Slot(slot), reason))
	}
	return out, rows.Err()
}

// ApplyPatches applies every patch in one transaction and returns the
// resulting days for the touched dates. Later patches for the same date win.
// PRE: every patch has been validated
// POST: all patches are applied or none is
func (s *SQLiteStore) ApplyPatches(ctx context.Context, accountID string, patches []domain.Patch) (domain.Month, error) {
	out := domain.Month{}
	now := storage.FormatTime(s.now())
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, p := range patches {
			current, err := listRange(ctx, tx, accountID, p.Date, p.Date)
			if err != nil {
				return err
			}
			next := p.Apply(current[p.Date])
			for _, slot := range domain.Slots {
				if err := writeSlot(ctx, tx, accountID, p.Date, slot, next.Get(slot), now); err != nil {
					return err
				}
			}
			out[p.Date] = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for k, d := range out {
		out.Put(k, d)
	}
	return out, nil
}

func writeSlot(ctx context.Context, tx *sql.Tx, accountID, date string, slot domain.Slot, e *domain.Entry, now string) error {
	if e == nil {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM meal_entry WHERE account_id = ? AND date = ? AND slot = ?",
			accountID, date, slot,
		)
		return err
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO meal_entry (account_id, date, slot, status, reason, updated_at) VALUES (?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(account_id, date, slot) DO UPDATE SET status=excluded.status, reason=excluded.reason, updated_at=excluded.updated_at",
		accountID, date, slot, e.Status, e.Reason, now,
	)
	return err
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mydaylog/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB, logging slow statements and recording each one
// under a "VERB table" label.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// A non-positive threshold falls back to DefaultSlowQuery.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// queryLabel reduces a statement to its verb and table, e.g. "SELECT meal_entry".
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "empty"
	}
	verb := strings.ToUpper(fields[0])
	for i, f := range fields[:len(fields)-1] {
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "UPDATE":
			table, _, _ := strings.Cut(fields[i+1], "(")
			return verb + " " + strings.TrimRight(table, ",;)")
		}
	}
	return verb
}

func (t *TimedDB) observe(label string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	failed := err != nil && !errors.Is(err, sql.ErrNoRows)

	switch {
	case elapsed >= t.threshold:
		slog.Warn("slow_query", "op", label, "duration_ms", ms)
	case failed:
		slog.Debug("query_error", "op", label, "duration_ms", ms, "error", err)
	default:
		slog.Debug("query", "op", label, "duration_ms", ms)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{Kind: perf.KindQuery, Path: label, Failed: failed, DurationMs: ms, Timestamp: start})
	}
}

// timed runs call and observes it under label.
func timed[T any](t *TimedDB, label string, call func() (T, error)) (T, error) {
	start := time.Now()
	v, err := call()
	t.observe(label, start, err)
	return v, err
}

// ExecContext runs a statement and records it.
// PRE: query is non-empty
// POST: one collector entry per call
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return timed(t, queryLabel(query), func() (sql.Result, error) { return t.db.ExecContext(ctx, query, args...) })
}

// QueryContext runs a query and records it.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return timed(t, queryLabel(query), func() (*sql.Rows, error) { return t.db.QueryContext(ctx, query, args...) })
}

// QueryRowContext runs a single-row query and records it. sql.ErrNoRows is not a failure.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(queryLabel(query), start, row.Err())
	return row
}

// BeginTx starts a transaction; only the BEGIN itself is timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return timed(t, "BEGIN", func() (*sql.Tx, error) { return t.db.BeginTx(ctx, opts) })
}

// Ping reports whether the database answers. It backs GET /healthz.
func (t *TimedDB) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Package storage persists balance snapshots taken from the ledger so
// the collective keeps its own history independent of the bank.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kasboek/internal/core"

	_ "modernc.org/sqlite"
)

// Snapshot is one stored balance observation.
type Snapshot struct {
	ID      int64
	Account string
	Balance core.Money
	TakenAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot stores a balance observation and returns its id.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, account string, balance core.Money, takenAt time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO balance_snapshots (account, cents, currency, taken_at) VALUES (?, ?, ?, ?)`,
		account, balance.Cents, balance.Currency, takenAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	slog.InfoContext(ctx, "Balance snapshot saved",
		"id", id,
		"account", account,
		"cents", balance.Cents,
		"taken_at", takenAt)

	return id, nil
}

// LatestSnapshot returns the most recent snapshot for an account, or
// sql.ErrNoRows wrapped when none exists yet.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, account string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account, cents, currency, taken_at FROM balance_snapshots
		 WHERE account = ? ORDER BY taken_at DESC, id DESC LIMIT 1`, account)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot for %q: %w", account, err)
	}
	return snapshot, nil
}

// ListSnapshots returns snapshots for an account newest-first, at most limit.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, account string, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account, cents, currency, taken_at FROM balance_snapshots
		 WHERE account = ? ORDER BY taken_at DESC, id DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %q: %w", account, err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// MonthEndBalance is the last observed balance of an account in a month.
type MonthEndBalance struct {
	Month   string // "2006-01"
	Balance core.Money
}

// MonthEndBalances returns per-month closing balances newest-first, at
// most limit months. The closing balance is the latest snapshot taken in
// that month.
func (r *SQLiteRepository) MonthEndBalances(ctx context.Context, account string, limit int) ([]MonthEndBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(taken_at, 1, 7) AS month, cents, currency, max(taken_at)
		 FROM balance_snapshots WHERE account = ?
		 GROUP BY month ORDER BY month DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("month-end balances for %q: %w", account, err)
	}
	defer rows.Close()

	var out []MonthEndBalance
	for rows.Next() {
		var (
			m        MonthEndBalance
			cents    int64
			currency string
			takenAt  string
		)
		if err := rows.Scan(&m.Month, &cents, &currency, &takenAt); err != nil {
			return nil, fmt.Errorf("scan month-end balance: %w", err)
		}
		m.Balance = core.FromCents(currency, cents)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month-end balances: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snapshot Snapshot
		cents    int64
		currency string
		takenAt  string
	)
	if err := row.Scan(&snapshot.ID, &snapshot.Account, &cents, &currency, &takenAt); err != nil {
		return Snapshot{}, err
	}
	snapshot.Balance = core.FromCents(currency, cents)
	parsed, err := time.Parse(time.RFC3339, takenAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse taken_at %q: %w", takenAt, err)
	}
	snapshot.TakenAt = parsed
	return snapshot, nil
}

package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kasboek/internal/amqp"
	"kasboek/internal/ledger"
	"kasboek/internal/storage"
)

// SnapshotPublisher announces stored snapshots to interested consumers.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error
}

// SheetAppender writes snapshot rows to an external spreadsheet.
type SheetAppender interface {
	AppendSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) (string, error)
}

// SnapshotWorker periodically records account balances into the snapshot
// archive and publishes an announcement for each stored snapshot. On the
// consuming side it forwards announcements to a spreadsheet.
type SnapshotWorker struct {
	source    ledger.Source
	archive   *storage.SQLiteRepository
	publisher SnapshotPublisher
	sheets    SheetAppender
	accounts  []string
	interval  time.Duration
}

func NewSnapshotWorker(source ledger.Source, archive *storage.SQLiteRepository, publisher SnapshotPublisher, sheets SheetAppender, accounts []string, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		source:    source,
		archive:   archive,
		publisher: publisher,
		sheets:    sheets,
		accounts:  accounts,
		interval:  interval,
	}
}

// TakeSnapshots records the current balance of every configured account.
// A failing account is logged and skipped so one broken account does not
// block the others.
func (w *SnapshotWorker) TakeSnapshots(ctx context.Context) error {
	var failed int
	for _, name := range w.accounts {
		if name == "" {
			continue
		}
		if err := w.snapshotAccount(ctx, name); err != nil {
			slog.ErrorContext(ctx, "Failed to snapshot account", "account", name, "error", err)
			failed++
		}
	}
	if failed == len(w.accounts) && failed > 0 {
		return fmt.Errorf("all %d snapshot attempts failed", failed)
	}
	return nil
}

func (w *SnapshotWorker) snapshotAccount(ctx context.Context, name string) error {
	account, err := w.source.AccountByName(ctx, name)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}

	takenAt := time.Now()
	id, err := w.archive.SaveSnapshot(ctx, name, account.Balance, takenAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot stored",
		"id", id,
		"account", name,
		"cents", account.Balance.Cents,
		"currency", account.Balance.Currency)

	if w.publisher == nil {
		return nil
	}

	msg := amqp.NewSnapshotMessage(name, account.Balance.Cents, account.Balance.Currency, takenAt)
	if err := w.publisher.PublishSnapshot(ctx, msg); err != nil {
		// The snapshot is already archived; announcement loss is recoverable
		// on the next round.
		slog.ErrorContext(ctx, "Failed to publish snapshot", "account", name, "error", err)
	}
	return nil
}

// StartupCheck takes an immediate snapshot round unless the archive already
// holds a recent one, so restarts do not flood the history.
func (w *SnapshotWorker) StartupCheck(ctx context.Context) error {
	for _, name := range w.accounts {
		if name == "" {
			continue
		}
		latest, err := w.archive.LatestSnapshot(ctx, name)
		if err == nil && time.Since(latest.TakenAt) < w.interval {
			slog.InfoContext(ctx, "Recent snapshot present, skipping startup round",
				"account", name,
				"taken_at", latest.TakenAt.Format(time.RFC3339))
			continue
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check latest snapshot for %s: %w", name, err)
		}
		if err := w.snapshotAccount(ctx, name); err != nil {
			slog.ErrorContext(ctx, "Startup snapshot failed", "account", name, "error", err)
		}
	}
	return nil
}

// HandleSnapshotMessage processes one snapshot announcement from the queue.
func (w *SnapshotWorker) HandleSnapshotMessage(ctx context.Context, msg *amqp.SnapshotMessage) error {
	slog.InfoContext(ctx, "Processing snapshot message",
		"account", msg.Account,
		"cents", msg.Cents,
		"taken_at", msg.TakenAt.Format(time.RFC3339))

	if w.sheets == nil {
		slog.WarnContext(ctx, "No sheet appender configured, skipping export",
			"account", msg.Account)
		return nil
	}

	ref, err := w.sheets.AppendSnapshot(ctx, msg)
	if err != nil {
		return fmt.Errorf("append snapshot to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"account", msg.Account,
		"sheets_ref", ref)
	return nil
}

// Run takes snapshots on a fixed interval until the context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.TakeSnapshots(ctx); err != nil {
				slog.ErrorContext(ctx, "Snapshot round failed", "error", err)
			}
		}
	}
}

package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kasboek/internal/amqp"
	"kasboek/internal/ledger/memory"
	"kasboek/internal/storage"
)

type recordingPublisher struct {
	messages []*amqp.SnapshotMessage
	err      error
}

func (p *recordingPublisher) PublishSnapshot(_ context.Context, msg *amqp.SnapshotMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type recordingAppender struct {
	appended []*amqp.SnapshotMessage
	err      error
}

func (a *recordingAppender) AppendSnapshot(_ context.Context, msg *amqp.SnapshotMessage) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.appended = append(a.appended, msg)
	return "Snapshots!A2:D2", nil
}

func newTestArchive(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTakeSnapshotsStoresAndPublishes(t *testing.T) {
	archive := newTestArchive(t)
	pub := &recordingPublisher{}
	w := NewSnapshotWorker(memory.Seed(), archive, pub, nil, []string{"kasboek", "billpay"}, time.Hour)

	if err := w.TakeSnapshots(context.Background()); err != nil {
		t.Fatalf("TakeSnapshots: %v", err)
	}

	latest, err := archive.LatestSnapshot(context.Background(), "kasboek")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.Balance.Cents != 123456 {
		t.Errorf("archived cents = %d, want 123456", latest.Balance.Cents)
	}
	if latest.Balance.Currency != "EUR" {
		t.Errorf("archived currency = %q, want EUR", latest.Balance.Currency)
	}

	if len(pub.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.messages))
	}
	if pub.messages[1].Account != "billpay" || pub.messages[1].Cents != 50000 {
		t.Errorf("second message = %+v, want billpay 50000", pub.messages[1])
	}
}

func TestTakeSnapshotsAllAccountsFailing(t *testing.T) {
	archive := newTestArchive(t)
	w := NewSnapshotWorker(memory.New(), archive, &recordingPublisher{}, nil, []string{"nobody"}, time.Hour)

	if err := w.TakeSnapshots(context.Background()); err == nil {
		t.Fatal("expected error when every account fails")
	}
}

func TestTakeSnapshotsPublishFailureKeepsArchive(t *testing.T) {
	archive := newTestArchive(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	w := NewSnapshotWorker(memory.Seed(), archive, pub, nil, []string{"kasboek"}, time.Hour)

	if err := w.TakeSnapshots(context.Background()); err != nil {
		t.Fatalf("TakeSnapshots: %v", err)
	}
	if _, err := archive.LatestSnapshot(context.Background(), "kasboek"); err != nil {
		t.Errorf("snapshot should be archived despite publish failure: %v", err)
	}
}

func TestStartupCheckSkipsRecentSnapshot(t *testing.T) {
	archive := newTestArchive(t)
	pub := &recordingPublisher{}
	w := NewSnapshotWorker(memory.Seed(), archive, pub, nil, []string{"kasboek"}, time.Hour)

	if err := w.TakeSnapshots(context.Background()); err != nil {
		t.Fatalf("TakeSnapshots: %v", err)
	}
	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Errorf("published %d messages, want 1 (startup round skipped)", len(pub.messages))
	}
}

func TestStartupCheckSnapshotsEmptyArchive(t *testing.T) {
	archive := newTestArchive(t)
	pub := &recordingPublisher{}
	w := NewSnapshotWorker(memory.Seed(), archive, pub, nil, []string{"kasboek"}, time.Hour)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Errorf("published %d messages, want 1", len(pub.messages))
	}
}

func TestHandleSnapshotMessage(t *testing.T) {
	appender := &recordingAppender{}
	w := NewSnapshotWorker(nil, nil, nil, appender, nil, time.Hour)

	msg := amqp.NewSnapshotMessage("kasboek", 123456, "EUR", time.Now())
	if err := w.HandleSnapshotMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotMessage: %v", err)
	}
	if len(appender.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(appender.appended))
	}

	appender.err = errors.New("quota exceeded")
	if err := w.HandleSnapshotMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error from failing appender")
	}
}

func TestHandleSnapshotMessageWithoutSheets(t *testing.T) {
	w := NewSnapshotWorker(nil, nil, nil, nil, nil, time.Hour)
	msg := amqp.NewSnapshotMessage("kasboek", 1, "EUR", time.Now())
	if err := w.HandleSnapshotMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotMessage without sheets: %v", err)
	}
}

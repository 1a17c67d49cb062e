package db

import (
	"context"
	"testing"
	"time"

	"github.com/taskflow/client-go/internal/models"
)

func TestJournalRoundTrip(t *testing.T) {
	conn, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	journal := NewJournal(conn)
	ctx := context.Background()

	id, err := journal.RecordDetected(ctx, models.ConflictLog{
		ItemID:          7,
		BoardID:         1,
		RemoteActor:     "Bob Lee",
		RemoteTimestamp: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("RecordDetected failed: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected a row id")
	}

	if err := journal.RecordResolved(ctx, id, models.ResolutionKeepLocal); err != nil {
		t.Fatalf("RecordResolved failed: %v", err)
	}

	entries, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ItemID != 7 || entry.RemoteActor != "Bob Lee" {
		t.Errorf("Expected stored fields back, got %+v", entry)
	}
	if entry.Resolution != models.ResolutionKeepLocal {
		t.Errorf("Expected keep_local resolution, got %q", entry.Resolution)
	}
	if entry.ResolvedAt == 0 {
		t.Error("Expected resolved timestamp set")
	}
	if entry.DetectedAt == 0 {
		t.Error("Expected detected timestamp defaulted")
	}
}

func TestJournalRecentOrdering(t *testing.T) {
	conn, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	journal := NewJournal(conn)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		if _, err := journal.RecordDetected(ctx, models.ConflictLog{ItemID: i, BoardID: 1}); err != nil {
			t.Fatalf("RecordDetected failed: %v", err)
		}
	}

	entries, err := journal.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ItemID != 3 || entries[1].ItemID != 2 {
		t.Errorf("Expected newest first, got %d then %d", entries[0].ItemID, entries[1].ItemID)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSyncEventStoreLog(t *testing.T) {
	db := testDB(t)
	s := NewSyncEventStore(db)
	ctx := context.Background()

	// Log should not error (best-effort).
	entityID := uuid.New()
	s.Log(ctx, "template", entityID, "write_file", "blog/templates/emails/welcome.html")

	t.Cleanup(func() {
		db.Exec("DELETE FROM sync_events WHERE entity_id = $1", entityID)
	})

	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sync_events WHERE entity_id = $1", entityID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestSyncEventStoreRecent(t *testing.T) {
	db := testDB(t)
	s := NewSyncEventStore(db)
	ctx := context.Background()

	id1 := uuid.New()
	id2 := uuid.New()
	s.Log(ctx, "category", id1, "create_dir", "")
	s.Log(ctx, "template", id2, "delete_file", "")

	t.Cleanup(func() {
		db.Exec("DELETE FROM sync_events WHERE entity_id IN ($1, $2)", id1, id2)
	})

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 entries, got %d", len(entries))
	}

	entries, err = s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent(1): %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(entries))
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// sync_event.go records filesystem mutations in the database for audit and
// debugging purposes. Each entry captures which category or template was
// touched, what happened to its directory or file, and when.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dyntemplates/internal/models"
)

// SyncEventStore handles sync event log operations.
type SyncEventStore struct {
	db *sql.DB
}

// NewSyncEventStore creates a new SyncEventStore.
func NewSyncEventStore(db *sql.DB) *SyncEventStore {
	return &SyncEventStore{db: db}
}

// Log records a sync event.
func (s *SyncEventStore) Log(ctx context.Context, entityType string, entityID uuid.UUID, action, detail string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_events (entity_type, entity_id, action, detail)
		VALUES ($1, $2, $3, $4)
	`, entityType, entityID, action, detail)
	if err != nil {
		// Log but don't fail: the audit trail is best-effort.
		slog.Warn("failed to log sync event",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("sync event logged",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
	)
}

// Recent returns the most recent sync events, newest first, limited to the
// specified count.
func (s *SyncEventStore) Recent(ctx context.Context, limit int) ([]models.SyncEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, detail, created_at
		FROM sync_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync events: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncEvent
	for rows.Next() {
		var e models.SyncEvent
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncEvent is an audit record of a filesystem mutation made on behalf of a
// category or template (directory created, file written, and so on).
type SyncEvent struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"` // "category" or "template"
	EntityID   uuid.UUID `json:"entity_id"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

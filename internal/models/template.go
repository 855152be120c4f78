// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Template is a named text record materialized as <name>.html inside its
// category's directory. Only one active template per (category, name) may
// exist; inactive rows are kept as revision history.
//
// Templates are never edited in place once superseded: a new revision is a
// new row whose RevisionOf points at the row it replaced.
type Template struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID uuid.UUID  `json:"category_id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	IsActive   bool       `json:"is_active"`
	RevisionOf *uuid.UUID `json:"revision_of,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  string     `json:"created_by"`

	// Virtual field populated by store methods that join categories.
	Category *Category `json:"category,omitempty"`
}

// String returns the "namespace - category - name" label. Falls back to the
// bare name when the category has not been loaded.
func (t *Template) String() string {
	if t.Category == nil {
		return t.Name
	}
	return t.Category.String() + " - " + t.Name
}

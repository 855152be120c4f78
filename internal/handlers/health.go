// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// TemplateCounter counts stored templates.
type TemplateCounter interface {
	Count(ctx context.Context) (int, error)
}

// SchemaVersion reports the highest applied migration.
type SchemaVersion func(ctx context.Context) (int64, error)

// Health reports whether the database is reachable and migrated.
type Health struct {
	version   SchemaVersion
	templates TemplateCounter
}

// NewHealth creates a Health handler.
func NewHealth(version SchemaVersion, templates TemplateCounter) *Health {
	return &Health{version: version, templates: templates}
}

type healthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
	Templates     int    `json:"templates"`
}

// Check answers 200 with the schema version and template count, or 503
// when the database cannot be queried.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	version, err := h.version(r.Context())
	if err != nil {
		slog.Warn("health: schema version", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	count, err := h.templates.Count(r.Context())
	if err != nil {
		slog.Warn("health: count templates", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", SchemaVersion: version, Templates: count})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dyntemplates/internal/engine"
)

// Renderer renders a template's materialized file.
type Renderer interface {
	Render(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// Public serves rendered template files.
type Public struct {
	renderer Renderer
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer Renderer) *Public {
	return &Public{renderer: renderer}
}

// TemplateView renders the file of the template with the given ID. A
// missing record or file is a 404.
func (p *Public) TemplateView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	html, err := p.renderer.Render(r.Context(), id)
	if errors.Is(err, engine.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("render template view", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

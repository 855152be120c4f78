// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders materialized template files for the public view.
// A template is looked up by ID, its file is read from the mirror, compiled
// as a Go html/template and executed with ViewData.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/google/uuid"

	"dyntemplates/internal/cache"
	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
)

// ErrNotFound is returned when the template record or its file is absent.
// Inactive revisions are not viewable and also report ErrNotFound.
var ErrNotFound = errors.New("template not found")

// TemplateFinder loads a template with its category. It returns (nil, nil)
// when no row matches.
type TemplateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
}

// ViewData holds the variables available to a template file when it is
// rendered, e.g. {{.Name}} or {{.Year}}.
type ViewData struct {
	ID        string
	Name      string
	Category  string
	Namespace string
	Year      int
}

// Engine renders template files. Compiled templates are cached in memory
// (L1) keyed by file path and modification time, so a rewritten file is
// recompiled on the next request. Rendered output is cached in Valkey (L2)
// when a ViewCache is configured.
type Engine struct {
	templates TemplateFinder
	mirror    *mirror.Mirror
	views     *cache.ViewCache
	cache     *templateCache
}

// New creates a new rendering engine with an empty L1 cache. views may be nil.
func New(templates TemplateFinder, m *mirror.Mirror, views *cache.ViewCache) *Engine {
	return &Engine{
		templates: templates,
		mirror:    m,
		views:     views,
		cache:     newTemplateCache(),
	}
}

// Render returns the rendered file of the template with the given ID.
func (e *Engine) Render(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if html, ok := e.views.Get(ctx, id); ok {
		return html, nil
	}

	t, err := e.templates.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if t == nil || !t.IsActive {
		return nil, ErrNotFound
	}

	path, err := e.mirror.FilePath(t)
	if err != nil {
		return nil, fmt.Errorf("resolve template file: %w", err)
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat template file: %w", err)
	}

	compiled := e.cache.get(path, info.ModTime())
	if compiled == nil {
		src, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		compiled, err = template.New(t.Name).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("compile template: %w", err)
		}
		e.cache.put(path, info.ModTime(), compiled)
	}

	data := ViewData{
		ID:        t.ID.String(),
		Name:      t.Name,
		Category:  t.Category.Name,
		Namespace: t.Category.Namespace,
		Year:      time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := compiled.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	html := buf.Bytes()
	e.views.Set(ctx, id, html)
	return html, nil
}

// Invalidate drops the cached output and compiled forms of the given
// templates.
func (e *Engine) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	e.views.Invalidate(ctx, ids...)
	e.cache.invalidateAll()
}

// InvalidateAll clears both cache levels. Used after a category directory
// is renamed or removed.
func (e *Engine) InvalidateAll(ctx context.Context) {
	e.views.InvalidateAll(ctx)
	e.cache.invalidateAll()
}

// ValidateTemplate attempts to compile content and returns an error if the
// Go template syntax is invalid.
func ValidateTemplate(content string) error {
	if _, err := template.New("validate").Parse(content); err != nil {
		return fmt.Errorf("invalid template syntax: %w", err)
	}
	return nil
}

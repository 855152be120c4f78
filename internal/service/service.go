// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service coordinates template categories and templates across the
// record store and the filesystem mirror. Every admin action goes through
// here: names are validated before anything is persisted, directory and
// file mutations are applied through the mirror, and each file mutation is
// followed by an audit event, a view cache invalidation and, when an object
// store is configured, an upload or delete of the mirrored object.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
	"dyntemplates/internal/slug"
)

var (
	// ErrNotFound is returned when a category or template does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNameConflict is returned when an active template with the same
	// name already exists in the category, or a category with the same
	// namespace and name already exists.
	ErrNameConflict = errors.New("name already in use")

	// ErrInvalidName is returned for names that are not a safe path segment.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnknownNamespace is returned when a namespace is not known.
	ErrUnknownNamespace = errors.New("unknown namespace")

	// ErrUnknownCategory is returned when a template refers to a missing category.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInactive is returned for file operations on an inactive template.
	ErrInactive = errors.New("template is not active")
)

// Sync event actions.
const (
	ActionCreateDir  = "create_dir"
	ActionDeleteDir  = "delete_dir"
	ActionRenameDir  = "rename_dir"
	ActionWriteFile  = "write_file"
	ActionDeleteFile = "delete_file"
	ActionRevise     = "revise"
)

// Sync event entity types.
const (
	EntityCategory = "category"
	EntityTemplate = "template"
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category, apply func() error) error
	Delete(ctx context.Context, id uuid.UUID) error
	Namespaces(ctx context.Context) ([]string, error)
}

// TemplateRepository persists templates and their revision chains.
type TemplateRepository interface {
	List(ctx context.Context, categoryID *uuid.UUID) ([]models.Template, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	ActiveNameTaken(ctx context.Context, categoryID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, t *models.Template) (*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Revise(ctx context.Context, old *models.Template, content, actor string, apply func() error) (*models.Template, error)
	History(ctx context.Context, id uuid.UUID) ([]models.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventLogger records sync events. Logging is best-effort.
type EventLogger interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action, detail string)
}

// ObjectMirror keeps an off-host copy of template files.
type ObjectMirror interface {
	Put(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, key string) error
}

// ViewInvalidator drops cached renders of template views.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, ids ...uuid.UUID)
	InvalidateAll(ctx context.Context)
}

// Service implements the admin operations on categories and templates.
type Service struct {
	categories CategoryRepository
	templates  TemplateRepository
	mirror     *mirror.Mirror
	events     EventLogger

	// Optional collaborators, nil when not configured.
	objects ObjectMirror
	views   ViewInvalidator
	known   []string
}

// New creates a Service.
func New(categories CategoryRepository, templates TemplateRepository, m *mirror.Mirror, events EventLogger) *Service {
	return &Service{
		categories: categories,
		templates:  templates,
		mirror:     m,
		events:     events,
	}
}

// SetObjectMirror enables uploading written files to object storage.
func (s *Service) SetObjectMirror(o ObjectMirror) {
	s.objects = o
}

// SetViewInvalidator enables view cache invalidation after file mutations.
func (s *Service) SetViewInvalidator(v ViewInvalidator) {
	s.views = v
}

// SetKnownNamespaces fixes the list of known namespaces. When unset, the
// directories under the mirror root are used.
func (s *Service) SetKnownNamespaces(namespaces []string) {
	s.known = slices.Clone(namespaces)
}

// Mirror returns the filesystem mirror.
func (s *Service) Mirror() *mirror.Mirror {
	return s.mirror
}

// Namespaces returns the known namespaces, sorted: the configured list, or
// the directories under the root when none is configured, plus every
// namespace that already holds a category.
func (s *Service) Namespaces(ctx context.Context) ([]string, error) {
	var ns []string
	if len(s.known) > 0 {
		ns = slices.Clone(s.known)
	} else {
		dirs, err := s.mirror.Namespaces()
		if err != nil {
			return nil, err
		}
		ns = dirs
	}
	held, err := s.categories.Namespaces(ctx)
	if err != nil {
		return nil, err
	}
	ns = append(ns, held...)
	slices.Sort(ns)
	return slices.Compact(ns), nil
}

// checkNamespace rejects namespaces that are malformed or not known.
func (s *Service) checkNamespace(ctx context.Context, ns string) error {
	if !slug.Valid(ns) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidName, ns)
	}
	known, err := s.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}
	if !slices.Contains(known, ns) {
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
	}
	return nil
}

func (s *Service) logEvent(ctx context.Context, entityType string, id uuid.UUID, action, detail string) {
	if s.events != nil {
		s.events.Log(ctx, entityType, id, action, detail)
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.views != nil {
		s.views.Invalidate(ctx, ids...)
	}
}

func (s *Service) invalidateAll(ctx context.Context) {
	if s.views != nil {
		s.views.InvalidateAll(ctx)
	}
}

// putObject uploads the template's file to the object mirror. Failures are
// logged; the local file stays the source of truth.
func (s *Service) putObject(ctx context.Context, t *models.Template) {
	if s.objects == nil {
		return
	}
	path, err := s.mirror.FilePath(t)
	if err != nil {
		return
	}
	key := s.mirror.RelPath(path)
	if err := s.objects.Put(ctx, key, []byte(t.Content)); err != nil {
		slog.Warn("object mirror upload failed", "key", key, "error", err)
	}
}

// deleteObject removes the template's object from the object mirror.
func (s *Service) deleteObject(ctx context.Context, t *models.Template) {
	if s.objects == nil {
		return
	}
	path, err := s.mirror.FilePath(t)
	if err != nil {
		return
	}
	key := s.mirror.RelPath(path)
	if err := s.objects.Delete(ctx, key); err != nil {
		slog.Warn("object mirror delete failed", "key", key, "error", err)
	}
}

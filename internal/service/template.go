// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
	"dyntemplates/internal/slug"
	"dyntemplates/internal/store"
)

// TemplateInput holds the editable fields of a template. A nil IsActive
// means active on create and unchanged on update.
type TemplateInput struct {
	CategoryID uuid.UUID
	Name       string
	Content    string
	IsActive   *bool
}

// ListTemplates returns templates, optionally restricted to a category.
func (s *Service) ListTemplates(ctx context.Context, categoryID *uuid.UUID) ([]models.Template, error) {
	return s.templates.List(ctx, categoryID)
}

// GetTemplate returns the template with the given ID, category loaded.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	t, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// checkTemplate validates name and category and rejects an active name
// that collides with another active template in the same category. It runs
// before anything is persisted.
func (s *Service) checkTemplate(ctx context.Context, t *models.Template) error {
	if !slug.Valid(t.Name) {
		return fmt.Errorf("%w: template %q", ErrInvalidName, t.Name)
	}
	c, err := s.categories.FindByID(ctx, t.CategoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, t.CategoryID)
	}
	t.Category = c

	if !t.IsActive {
		return nil
	}
	taken, err := s.templates.ActiveNameTaken(ctx, t.CategoryID, t.Name, t.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("template %q in %s: %w", t.Name, c, ErrNameConflict)
	}
	return nil
}

// CreateTemplate stores a new template. No file is written.
func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput, actor string) (*models.Template, error) {
	t := &models.Template{
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Content:    in.Content,
		IsActive:   true,
		CreatedBy:  actor,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if err := s.checkTemplate(ctx, t); err != nil {
		return nil, err
	}

	created, err := s.templates.Create(ctx, t)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("template %q: %w", t.Name, ErrNameConflict)
	}
	if err != nil {
		return nil, err
	}
	created.Category = t.Category
	slog.Info("template created", "id", created.ID, "template", created.String())
	return created, nil
}

// UpdateTemplate edits a template in place. The file is not rewritten, so
// a content change leaves the template out of sync until WriteFile.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, in TemplateInput) (*models.Template, error) {
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	t := *existing
	t.CategoryID = in.CategoryID
	t.Name = in.Name
	t.Content = in.Content
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if err := s.checkTemplate(ctx, &t); err != nil {
		return nil, err
	}

	err = s.templates.Update(ctx, &t)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("template %q: %w", t.Name, ErrNameConflict)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return &t, nil
}

// DeleteTemplate removes the template record. Its file is left in place;
// use DeleteFile first to remove it.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ReviseTemplate replaces an active template with a new revision holding
// content. The old row is deactivated and its file deleted in the same
// transaction that inserts the new row; the file delete is best-effort and
// does not abort the revision. After commit the new file is written. A
// missing category directory is reported as SkippedCategoryMissing.
func (s *Service) ReviseTemplate(ctx context.Context, id uuid.UUID, content, actor string) (*models.Template, mirror.Outcome, error) {
	old, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !old.IsActive {
		return nil, "", fmt.Errorf("revise %s: %w", id, ErrInactive)
	}

	var oldFileDeleted bool
	revised, err := s.templates.Revise(ctx, old, content, actor, func() error {
		out, err := s.mirror.DeleteFile(old)
		if err != nil {
			slog.Warn("revise: delete old file", "template", old.ID, "error", err)
			return nil
		}
		oldFileDeleted = out == mirror.Deleted
		return nil
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, "", fmt.Errorf("revise %s: %w", id, ErrNameConflict)
	}
	if err != nil {
		return nil, "", err
	}

	if oldFileDeleted {
		s.deleteObject(ctx, old)
	}
	s.logEvent(ctx, EntityTemplate, revised.ID, ActionRevise, "revision of "+old.ID.String())
	s.invalidate(ctx, old.ID, revised.ID)

	out, err := s.Materialize(ctx, revised)
	if err != nil {
		return revised, "", fmt.Errorf("write revision file: %w", err)
	}
	return revised, out, nil
}

// WriteFile materializes the template's content to its file.
func (s *Service) WriteFile(ctx context.Context, id uuid.UUID) (mirror.Outcome, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	if !t.IsActive {
		return "", fmt.Errorf("write %s: %w", id, ErrInactive)
	}
	return s.Materialize(ctx, t)
}

// Materialize writes a loaded template to its file. A successful write is
// logged, uploaded to the object mirror and drops the cached view.
func (s *Service) Materialize(ctx context.Context, t *models.Template) (mirror.Outcome, error) {
	out, err := s.mirror.WriteFile(t)
	if err != nil {
		return "", err
	}
	if out == mirror.Written {
		path, _ := s.mirror.FilePath(t)
		s.logEvent(ctx, EntityTemplate, t.ID, ActionWriteFile, s.mirror.RelPath(path))
		s.putObject(ctx, t)
		s.invalidate(ctx, t.ID)
	}
	return out, nil
}

// DeleteFile removes the template's file. The record stays.
func (s *Service) DeleteFile(ctx context.Context, id uuid.UUID) (mirror.Outcome, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	out, err := s.mirror.DeleteFile(t)
	if err != nil {
		return "", err
	}
	if out == mirror.Deleted {
		path, _ := s.mirror.FilePath(t)
		s.logEvent(ctx, EntityTemplate, t.ID, ActionDeleteFile, s.mirror.RelPath(path))
		s.deleteObject(ctx, t)
		s.invalidate(ctx, t.ID)
	}
	return out, nil
}

// Status compares the template record with its file.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*models.Template, mirror.Status, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, "", err
	}
	st, err := s.mirror.Status(t)
	if err != nil {
		return t, "", err
	}
	return t, st, nil
}

// History returns the revision chain ending at id, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]models.Template, error) {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return nil, err
	}
	return s.templates.History(ctx, id)
}

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

// CategoryInput holds the editable fields of a category.
type CategoryInput struct {
	Namespace   string
	Name        string
	Description *string
}

// CategoryChange reports what happened to the directory during an update.
// Outcome is empty when no directory operation was attempted. Notice carries
// a non-fatal explanation, e.g. that there was no directory to rename.
type CategoryChange struct {
	Outcome mirror.Outcome
	Notice  string
}

func (s *Service) validateCategory(ctx context.Context, in CategoryInput) error {
	if err := s.checkNamespace(ctx, in.Namespace); err != nil {
		return err
	}
	if !slug.Valid(in.Name) {
		return fmt.Errorf("%w: category %q", ErrInvalidName, in.Name)
	}
	return nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// GetCategory returns the category with the given ID.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// CreateCategory stores a new category. The directory is only created
// when createDir is set; the returned outcome is empty otherwise.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput, actor string, createDir bool) (*models.Category, mirror.Outcome, error) {
	if err := s.validateCategory(ctx, in); err != nil {
		return nil, "", err
	}

	c, err := s.categories.Create(ctx, &models.Category{
		Namespace:   in.Namespace,
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, "", fmt.Errorf("category %s/%s: %w", in.Namespace, in.Name, ErrNameConflict)
	}
	if err != nil {
		return nil, "", err
	}

	if !createDir {
		return c, "", nil
	}
	out, err := s.EnsureDirectory(ctx, c)
	return c, out, err
}

// UpdateCategory changes a category's fields. When syncDir is set and the
// namespace or name changed, the directory is renamed inside the same
// transaction as the record update:
//   - an occupied destination rolls the record back (mirror.ErrTargetExists);
//   - a missing source is not fatal. If the namespace changed the directory
//     is created at the new location, otherwise the update commits and the
//     change carries a notice.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput, actor string, syncDir bool) (*models.Category, CategoryChange, error) {
	var change CategoryChange

	old, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, change, err
	}
	if err := s.validateCategory(ctx, in); err != nil {
		return nil, change, err
	}

	updated := *old
	updated.Namespace = in.Namespace
	updated.Name = in.Name
	updated.Description = in.Description
	updated.UpdatedBy = actor

	moved := old.Namespace != updated.Namespace || old.Name != updated.Name

	var apply func() error
	if syncDir && moved {
		apply = func() error {
			out, err := s.mirror.RenameDir(old, &updated)
			change.Outcome = out
			if !errors.Is(err, mirror.ErrSourceMissing) {
				return err
			}
			if old.Namespace != updated.Namespace {
				out, err := s.mirror.CreateDir(&updated)
				if err != nil {
					return err
				}
				change.Outcome = out
				change.Notice = "no directory to move; created at the new location"
				return nil
			}
			change.Notice = "no directory to rename"
			return nil
		}
	}

	err = s.categories.Update(ctx, &updated, apply)
	if err != nil {
		if change.Outcome == mirror.Renamed {
			// The record rolled back after the directory moved; move it back.
			if _, rerr := s.mirror.RenameDir(&updated, old); rerr != nil {
				slog.Error("restore renamed directory", "category", id, "error", rerr)
			}
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, CategoryChange{}, fmt.Errorf("category %s/%s: %w", in.Namespace, in.Name, ErrNameConflict)
		}
		return nil, change, err
	}

	switch change.Outcome {
	case mirror.Renamed:
		s.logEvent(ctx, EntityCategory, id, ActionRenameDir,
			s.mirror.RelPath(s.mirror.DirPath(old))+" -> "+s.mirror.RelPath(s.mirror.DirPath(&updated)))
		s.remirrorCategory(ctx, old, &updated)
		s.invalidateAll(ctx)
	case mirror.Created:
		s.logEvent(ctx, EntityCategory, id, ActionCreateDir, s.mirror.RelPath(s.mirror.DirPath(&updated)))
	}

	slog.Info("category updated", "id", id, "namespace", updated.Namespace, "name", updated.Name, "outcome", change.Outcome)
	return &updated, change, nil
}

// DeleteCategory removes the category record, its templates (cascade) and
// its directory. Directory removal is best-effort.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (mirror.Outcome, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return "", err
	}

	var active []models.Template
	if s.objects != nil {
		all, err := s.templates.List(ctx, &c.ID)
		if err != nil {
			return "", err
		}
		for _, t := range all {
			if t.IsActive {
				active = append(active, t)
			}
		}
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return "", err
	}

	out, err := s.deleteDir(ctx, c)
	for i := range active {
		s.deleteObject(ctx, &active[i])
	}
	s.invalidateAll(ctx)
	if err != nil {
		return "", err
	}
	return out, nil
}

// CreateDirectory creates the category directory if it is absent.
func (s *Service) CreateDirectory(ctx context.Context, id uuid.UUID) (mirror.Outcome, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return "", err
	}
	return s.EnsureDirectory(ctx, c)
}

// DeleteDirectory removes the category directory tree. The record stays.
func (s *Service) DeleteDirectory(ctx context.Context, id uuid.UUID) (mirror.Outcome, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return "", err
	}
	out, err := s.deleteDir(ctx, c)
	if err != nil {
		return "", err
	}
	s.invalidateAll(ctx)
	return out, nil
}

// ListEntries returns the names inside the category directory.
func (s *Service) ListEntries(ctx context.Context, id uuid.UUID) ([]string, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mirror.ListEntries(c)
}

// DirectoryExists reports whether the category directory exists.
func (s *Service) DirectoryExists(c *models.Category) bool {
	return s.mirror.DirExists(c)
}

// EnsureDirectory creates the directory of a loaded category if absent and
// records the creation.
func (s *Service) EnsureDirectory(ctx context.Context, c *models.Category) (mirror.Outcome, error) {
	out, err := s.mirror.CreateDir(c)
	if err != nil {
		return "", err
	}
	if out == mirror.Created {
		s.logEvent(ctx, EntityCategory, c.ID, ActionCreateDir, s.mirror.RelPath(s.mirror.DirPath(c)))
	}
	return out, nil
}

func (s *Service) deleteDir(ctx context.Context, c *models.Category) (mirror.Outcome, error) {
	out, err := s.mirror.DeleteDir(c)
	if err != nil {
		return "", err
	}
	if out == mirror.Deleted {
		s.logEvent(ctx, EntityCategory, c.ID, ActionDeleteDir, s.mirror.RelPath(s.mirror.DirPath(c)))
	}
	return out, nil
}

// remirrorCategory moves the mirrored objects of a renamed category's
// active templates to their new keys.
func (s *Service) remirrorCategory(ctx context.Context, old, renamed *models.Category) {
	if s.objects == nil {
		return
	}
	templates, err := s.templates.List(ctx, &renamed.ID)
	if err != nil {
		slog.Warn("object mirror: list templates after rename", "category", renamed.ID, "error", err)
		return
	}
	for i := range templates {
		t := templates[i]
		if !t.IsActive {
			continue
		}
		t.Category = old
		s.deleteObject(ctx, &t)
		t.Category = renamed
		if s.mirror.FileExists(&t) {
			data, err := s.mirror.ReadFile(&t)
			if err != nil {
				continue
			}
			t.Content = string(data)
			s.putObject(ctx, &t)
		}
	}
}

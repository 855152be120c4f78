// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"dyntemplates/internal/models"
)

// templateSelect selects a template joined with its category. The column
// order matches scanTemplate.
const templateSelect = `
	SELECT t.id, t.category_id, t.name, t.content, t.is_active, t.revision_of,
	       t.created_at, t.created_by,
	       c.id, c.namespace, c.name, c.description,
	       c.created_at, c.created_by, c.updated_at, c.updated_by
	FROM templates t
	JOIN template_categories c ON c.id = t.category_id`

// templateReturning is the RETURNING list for inserts (no category join).
const templateReturning = `id, category_id, name, content, is_active, revision_of, created_at, created_by`

// TemplateStore handles all template-related database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// scanTemplate scans a templateSelect row, populating the Category field.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var t models.Template
	var c models.Category
	err := scanner.Scan(
		&t.ID, &t.CategoryID, &t.Name, &t.Content, &t.IsActive, &t.RevisionOf,
		&t.CreatedAt, &t.CreatedBy,
		&c.ID, &c.Namespace, &c.Name, &c.Description,
		&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.Category = &c
	return &t, nil
}

// scanTemplateRow scans a templateReturning row. Category is left nil.
func scanTemplateRow(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var t models.Template
	err := scanner.Scan(
		&t.ID, &t.CategoryID, &t.Name, &t.Content, &t.IsActive, &t.RevisionOf,
		&t.CreatedAt, &t.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TemplateStore) query(ctx context.Context, where string, args ...any) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, templateSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// List returns templates newest first. A non-nil categoryID restricts the
// result to that category.
func (s *TemplateStore) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Template, error) {
	if categoryID != nil {
		return s.query(ctx, `WHERE t.category_id = $1 ORDER BY t.created_at DESC, t.id`, *categoryID)
	}
	return s.query(ctx, `ORDER BY t.created_at DESC, t.id`)
}

// ListActiveByNamespace returns the active templates of every category in
// the namespace, ordered by id so repeated runs visit them in the same order.
func (s *TemplateStore) ListActiveByNamespace(ctx context.Context, namespace string) ([]models.Template, error) {
	return s.query(ctx, `WHERE c.namespace = $1 AND t.is_active ORDER BY t.id`, namespace)
}

// FindByID retrieves a template and its category. Returns nil if not found.
func (s *TemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, templateSelect+` WHERE t.id = $1`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// ActiveNameTaken reports whether another active template in the category
// already uses name. The row identified by exclude is ignored so a template
// can be saved under its own name.
func (s *TemplateStore) ActiveNameTaken(ctx context.Context, categoryID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM templates
			WHERE category_id = $1 AND name = $2 AND is_active AND id <> $3
		)
	`, categoryID, name, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check template name: %w", err)
	}
	return taken, nil
}

// Create inserts a new template. Returns ErrDuplicate when an active
// template with the same name already exists in the category.
func (s *TemplateStore) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO templates (category_id, name, content, is_active, revision_of, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+templateReturning,
		t.CategoryID, t.Name, t.Content, t.IsActive, t.RevisionOf, t.CreatedBy,
	)
	result, err := scanTemplateRow(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create template: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return result, nil
}

// Update modifies a template in place (category, name, content, active flag).
func (s *TemplateStore) Update(ctx context.Context, t *models.Template) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE templates SET
			category_id = $1, name = $2, content = $3, is_active = $4
		WHERE id = $5
	`, t.CategoryID, t.Name, t.Content, t.IsActive, t.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update template: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Revise replaces old with a new active row holding content, linked to old
// through revision_of. Deactivating old, running apply and inserting the new
// row share one transaction; apply runs after the deactivation and its
// error aborts the revision.
func (s *TemplateStore) Revise(ctx context.Context, old *models.Template, content, actor string, apply func() error) (*models.Template, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE templates SET is_active = FALSE WHERE id = $1 AND is_active`, old.ID)
	if err != nil {
		return nil, fmt.Errorf("deactivate template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("deactivate template %s: not active or not found", old.ID)
	}

	if apply != nil {
		if err := apply(); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO templates (category_id, name, content, is_active, revision_of, created_by)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		RETURNING `+templateReturning,
		old.CategoryID, old.Name, content, old.ID, actor,
	)
	created, err := scanTemplateRow(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert revision: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit revision: %w", err)
	}

	old.IsActive = false
	created.Category = old.Category
	return created, nil
}

// History returns the revision chain ending at id, newest first: the
// template itself, then the row it revised, and so on.
func (s *TemplateStore) History(ctx context.Context, id uuid.UUID) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain AS (
			SELECT `+templateReturning+`, 0 AS depth
			FROM templates WHERE id = $1
			UNION ALL
			SELECT t.id, t.category_id, t.name, t.content, t.is_active, t.revision_of,
			       t.created_at, t.created_by, chain.depth + 1
			FROM templates t
			JOIN chain ON t.id = chain.revision_of
		)
		SELECT `+templateReturning+`
		FROM chain
		ORDER BY depth
	`, id)
	if err != nil {
		return nil, fmt.Errorf("template history: %w", err)
	}
	defer rows.Close()

	var chain []models.Template
	for rows.Next() {
		t, err := scanTemplateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		chain = append(chain, *t)
	}
	return chain, rows.Err()
}

// Delete removes a template by ID. Rows that revised it keep existing with
// revision_of cleared (ON DELETE SET NULL).
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

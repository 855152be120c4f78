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

// CategoryStore manages template categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, namespace, name, description, created_at, created_by, updated_at, updated_by`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Namespace, &c.Name, &c.Description,
		&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by namespace, then name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM template_categories
		ORDER BY namespace, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM template_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. Returns ErrDuplicate if the
// (namespace, name) pair is taken.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO template_categories (namespace, name, description, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+categoryColumns,
		c.Namespace, c.Name, c.Description, c.CreatedBy,
	)
	result, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create category: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. When apply is non-nil it runs after
// the row is updated but before commit; an error from apply rolls the
// update back. This keeps a directory rename and the record change together.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category, apply func() error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE template_categories SET
			namespace = $1, name = $2, description = $3,
			updated_by = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, c.Namespace, c.Name, c.Description, c.UpdatedBy, c.ID).Scan(&c.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("update category: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if apply != nil {
		if err := apply(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a category by ID. Its templates are removed by the
// ON DELETE CASCADE foreign key.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM template_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Namespaces returns the distinct namespaces that have at least one category.
func (s *CategoryStore) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT namespace FROM template_categories ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scan namespace: %w", err)
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

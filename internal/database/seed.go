package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedContent is the body of the sample welcome template.
const seedContent = `<h1>Welcome, {{.Name}}!</h1>
<p>Thanks for signing up.</p>
`

// Seed populates the database with a sample category and template in the
// given namespace so a fresh development install has something to sync.
// It does nothing if any category exists already.
func Seed(db *sql.DB, namespace string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM template_categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	var categoryID string
	err = tx.QueryRow(`
		INSERT INTO template_categories (namespace, name, description, created_by, updated_by)
		VALUES ($1, 'emails', 'Transactional email bodies', 'seed', 'seed')
		RETURNING id
	`, namespace).Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO templates (category_id, name, content, created_by)
		VALUES ($1, 'welcome', $2, 'seed')
	`, categoryID, seedContent)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample template",
		"namespace", namespace,
		"category", "emails",
		"template", "welcome",
	)

	return nil
}

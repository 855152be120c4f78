// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"dyntemplates/internal/database"
	"dyntemplates/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "dyntemplates")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "dyntemplates")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testCategory creates a category in a namespace unique to the test and
// removes it (and its templates, by cascade) when the test finishes.
func testCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	ns := "test-" + uuid.NewString()[:8]
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{
		Namespace: ns, Name: name, CreatedBy: "tester",
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { cleanNamespaces(t, db, ns) })
	return c
}

// cleanNamespaces removes test categories by namespace. Call in t.Cleanup().
func cleanNamespaces(t *testing.T, db *sql.DB, namespaces ...string) {
	t.Helper()
	for _, ns := range namespaces {
		db.Exec("DELETE FROM template_categories WHERE namespace = $1", ns)
	}
}

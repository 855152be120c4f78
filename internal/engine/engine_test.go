package engine

import (
	"context"
	"errors"
	"html/template"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
)

// fakeFinder serves templates from a map.
type fakeFinder struct {
	templates map[uuid.UUID]*models.Template
	err       error
}

func (f *fakeFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates[id], nil
}

// setup returns an engine over a temp root holding one template whose
// category directory exists but whose file has not been written.
func setup(t *testing.T, content string) (*Engine, *mirror.Mirror, *models.Template) {
	t.Helper()
	m := mirror.New(t.TempDir())
	tmpl := &models.Template{
		ID:       uuid.New(),
		Name:     "welcome",
		Content:  content,
		IsActive: true,
		Category: &models.Category{Namespace: "blog", Name: "emails"},
	}
	if _, err := m.CreateDir(tmpl.Category); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	finder := &fakeFinder{templates: map[uuid.UUID]*models.Template{tmpl.ID: tmpl}}
	return New(finder, m, nil), m, tmpl
}

func TestRenderUnknownTemplate(t *testing.T) {
	eng, _, _ := setup(t, "")
	_, err := eng.Render(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRenderMissingFile(t *testing.T) {
	eng, _, tmpl := setup(t, "Hello")
	_, err := eng.Render(context.Background(), tmpl.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRenderInactiveTemplate(t *testing.T) {
	eng, m, tmpl := setup(t, "Hello")
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tmpl.IsActive = false
	_, err := eng.Render(context.Background(), tmpl.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRenderFinderError(t *testing.T) {
	m := mirror.New(t.TempDir())
	eng := New(&fakeFinder{err: errors.New("db down")}, m, nil)
	_, err := eng.Render(context.Background(), uuid.New())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected a load error, got %v", err)
	}
}

func TestRenderFile(t *testing.T) {
	eng, m, tmpl := setup(t, `<h1>{{.Namespace}}/{{.Category}}/{{.Name}}</h1>`)
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	html, err := eng.Render(context.Background(), tmpl.ID)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(html); got != "<h1>blog/emails/welcome</h1>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderReadsFileNotRecord(t *testing.T) {
	eng, m, tmpl := setup(t, "from file")
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// An unsynced edit of the record does not change the view.
	tmpl.Content = "from record"

	html, err := eng.Render(context.Background(), tmpl.ID)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(html) != "from file" {
		t.Errorf("got %q, want file content", html)
	}
}

func TestRenderPicksUpRewrittenFile(t *testing.T) {
	eng, m, tmpl := setup(t, "v1")
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := eng.Render(context.Background(), tmpl.ID); err != nil {
		t.Fatalf("Render v1: %v", err)
	}

	tmpl.Content = "v2"
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile v2: %v", err)
	}
	// Force a distinct mtime so the L1 entry is stale.
	path, _ := m.FilePath(tmpl)
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	html, err := eng.Render(context.Background(), tmpl.ID)
	if err != nil {
		t.Fatalf("Render v2: %v", err)
	}
	if string(html) != "v2" {
		t.Errorf("got %q, want v2", html)
	}
}

func TestRenderInvalidSyntax(t *testing.T) {
	eng, m, tmpl := setup(t, "<h1>{{.Name</h1>")
	if _, err := m.WriteFile(tmpl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := eng.Render(context.Background(), tmpl.ID)
	if err == nil || !strings.Contains(err.Error(), "compile template") {
		t.Errorf("expected compile error, got %v", err)
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		expectError bool
	}{
		{"valid plain HTML", `<html><body><h1>Hello World</h1></body></html>`, false},
		{"valid template with variable", `<h1>{{.Name}}</h1>`, false},
		{"valid empty template", ``, false},
		{"invalid unclosed action", `<h1>{{.Name</h1>`, true},
		{"invalid unknown function", `<h1>{{unknownFunc .Name}}</h1>`, true},
		{"invalid mismatched end", `{{if .Name}}<p>hello</p>{{end}}{{end}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplate(tt.html)
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTemplateCache(t *testing.T) {
	c := newTemplateCache()
	now := time.Now()

	if c.get("/a.html", now) != nil {
		t.Error("expected miss on empty cache")
	}

	tmpl := template.Must(template.New("a").Parse("x"))
	c.put("/a.html", now, tmpl)
	if c.get("/a.html", now) == nil {
		t.Error("expected hit")
	}
	if c.get("/a.html", now.Add(time.Second)) != nil {
		t.Error("expected miss for newer mtime")
	}

	c.invalidateAll()
	if c.get("/a.html", now) != nil {
		t.Error("expected miss after invalidateAll")
	}
}

package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyntemplates/internal/models"
)

func template(c *models.Category, name, content string) *models.Template {
	return &models.Template{Name: name, Content: content, IsActive: true, Category: c}
}

func TestFilePath(t *testing.T) {
	m := New("/srv/project")
	path, err := m.FilePath(template(category("blog", "emails"), "welcome", ""))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/project", "blog", "templates", "emails", "welcome.html"), path)

	_, err = m.FilePath(&models.Template{Name: "welcome"})
	assert.ErrorIs(t, err, ErrCategoryNotLoaded)

	_, err = m.FilePath(template(category("blog", "emails"), "../escape", ""))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestWriteFileSkipsMissingCategory(t *testing.T) {
	m := New(t.TempDir())
	tmpl := template(category("blog", "emails"), "welcome", "Hello")

	out, err := m.WriteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, SkippedCategoryMissing, out)
	assert.False(t, m.DirExists(tmpl.Category), "write must not create the directory")
	assert.False(t, m.FileExists(tmpl))
}

func TestWriteAndDeleteFile(t *testing.T) {
	m := New(t.TempDir())
	tmpl := template(category("blog", "emails"), "welcome", "Hello")
	_, err := m.CreateDir(tmpl.Category)
	require.NoError(t, err)

	out, err := m.WriteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, Written, out)
	assert.True(t, m.FileExists(tmpl))

	tmpl.Content = "Hello again"
	out, err = m.WriteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, Written, out)
	data, err := m.ReadFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", string(data))

	out, err = m.DeleteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, Deleted, out)
	assert.False(t, m.FileExists(tmpl))

	out, err = m.DeleteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, NotFound, out)
}

func TestStatusLifecycle(t *testing.T) {
	m := New(t.TempDir())
	tmpl := template(category("blog", "emails"), "welcome", "Hello")

	st, err := m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusCategoryMissing, st)

	_, err = m.CreateDir(tmpl.Category)
	require.NoError(t, err)
	st, err = m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusFileMissing, st)

	_, err = m.WriteFile(tmpl)
	require.NoError(t, err)
	st, err = m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, st)

	tmpl.Content = "Hello!"
	st, err = m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfSync, st)

	tmpl.IsActive = false
	st, err = m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, st)
}

func TestStatusInactiveWinsOverMissingCategory(t *testing.T) {
	m := New(t.TempDir())
	tmpl := template(category("blog", "emails"), "welcome", "Hello")
	tmpl.IsActive = false

	st, err := m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, st)
}

func TestStatusNormalizesLineEndings(t *testing.T) {
	m := New(t.TempDir())
	tmpl := template(category("blog", "emails"), "welcome", "line one\r\nline two\r\n")
	_, err := m.CreateDir(tmpl.Category)
	require.NoError(t, err)

	path, err := m.FilePath(tmpl)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	st, err := m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, st)

	tmpl.Content = "line one\nline two\n"
	require.NoError(t, os.WriteFile(path, []byte("line one\r\nline two\r\n"), 0o644))
	st, err = m.Status(tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, st)
}

func TestScenarioBlogEmailsWelcome(t *testing.T) {
	root := t.TempDir()
	m := New(root)
	tmpl := template(category("blog", "emails"), "welcome", "Hello")

	_, err := m.CreateDir(tmpl.Category)
	require.NoError(t, err)
	out, err := m.WriteFile(tmpl)
	require.NoError(t, err)
	assert.Equal(t, Written, out)

	data, err := os.ReadFile(filepath.Join(root, "blog", "templates", "emails", "welcome.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))

	st, _ := m.Status(tmpl)
	assert.Equal(t, StatusSynced, st)

	tmpl.Content = "Hello!"
	st, _ = m.Status(tmpl)
	assert.Equal(t, StatusOutOfSync, st)
}

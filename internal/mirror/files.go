// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mirror

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dyntemplates/internal/models"
)

// FilePath returns <category dir>/<template name>.html. The template's
// Category must be loaded.
func (m *Mirror) FilePath(t *models.Template) (string, error) {
	if t.Category == nil {
		return "", ErrCategoryNotLoaded
	}
	if err := checkCategory(t.Category); err != nil {
		return "", err
	}
	if !localSegment(t.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, t.Name)
	}
	return filepath.Join(m.DirPath(t.Category), t.Name+fileExt), nil
}

// FileExists reports whether the template file currently exists.
func (m *Mirror) FileExists(t *models.Template) bool {
	path, err := m.FilePath(t)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteFile writes the template content to its file, replacing any previous
// content. Nothing is created when the category directory is missing; the
// outcome is then SkippedCategoryMissing and the caller must create the
// directory and retry.
func (m *Mirror) WriteFile(t *models.Template) (Outcome, error) {
	path, err := m.FilePath(t)
	if err != nil {
		return "", err
	}
	if !m.DirExists(t.Category) {
		return SkippedCategoryMissing, nil
	}
	if err := os.WriteFile(path, []byte(t.Content), filePerm); err != nil {
		return "", settle(OpWriteFile, path, fmt.Errorf("write template file %s: %w", path, err))
	}
	return Written, nil
}

// DeleteFile removes the template file.
func (m *Mirror) DeleteFile(t *models.Template) (Outcome, error) {
	path, err := m.FilePath(t)
	if err != nil {
		return "", err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return NotFound, nil
	}
	if err != nil {
		return "", settle(OpDeleteFile, path, fmt.Errorf("delete template file %s: %w", path, err))
	}
	return Deleted, nil
}

// ReadFile returns the current bytes of the template file.
func (m *Mirror) ReadFile(t *models.Template) ([]byte, error) {
	path, err := m.FilePath(t)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Status compares the template record with its file. Checks run in order:
// inactive record, missing category directory, missing file, then content
// equality after normalizing CRLF to LF on both sides.
func (m *Mirror) Status(t *models.Template) (Status, error) {
	if !t.IsActive {
		return StatusInactive, nil
	}
	path, err := m.FilePath(t)
	if err != nil {
		return "", err
	}
	if !m.DirExists(t.Category) {
		return StatusCategoryMissing, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return StatusFileMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("read template file %s: %w", path, err)
	}
	if bytes.Equal(normalizeNewlines(data), normalizeNewlines([]byte(t.Content))) {
		return StatusSynced, nil
	}
	return StatusOutOfSync, nil
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mirror keeps the on-disk copy of template categories and
// templates. A category is the directory <root>/<namespace>/templates/<name>;
// a template is the file <name>.html inside its category's directory.
//
// Every query reads the filesystem at call time. Nothing is cached and no
// sync state is persisted.
package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dyntemplates/internal/models"
)

const (
	// templatesDir is the fixed segment between a namespace and its categories.
	templatesDir = "templates"

	// fileExt is appended to a template name to form its file name.
	fileExt = ".html"

	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

var (
	// ErrTargetExists is returned by RenameDir when the destination is occupied.
	ErrTargetExists = errors.New("target directory already exists")

	// ErrSourceMissing is returned by RenameDir when there is nothing to rename.
	ErrSourceMissing = errors.New("source directory does not exist")

	// ErrInvalidPath is returned when a name would escape its parent directory.
	ErrInvalidPath = errors.New("invalid path segment")

	// ErrCategoryNotLoaded is returned for a template whose Category is nil.
	ErrCategoryNotLoaded = errors.New("template category not loaded")
)

// Mirror resolves and mutates category directories and template files
// under a single project root.
type Mirror struct {
	root string
}

// New creates a Mirror rooted at root. The root itself is not created.
func New(root string) *Mirror {
	return &Mirror{root: filepath.Clean(root)}
}

// DirPath returns <root>/<namespace>/templates/<category>.
func (m *Mirror) DirPath(c *models.Category) string {
	return filepath.Join(m.root, c.Namespace, templatesDir, c.Name)
}

// DirExists reports whether the category directory currently exists.
func (m *Mirror) DirExists(c *models.Category) bool {
	return isDir(m.DirPath(c))
}

// CreateDir creates the category directory and any missing parents.
// An existing directory is left untouched and reported as AlreadyExists.
func (m *Mirror) CreateDir(c *models.Category) (Outcome, error) {
	if err := checkCategory(c); err != nil {
		return "", err
	}
	path := m.DirPath(c)
	if isDir(path) {
		return AlreadyExists, nil
	}
	// MkdirAll succeeds when another caller created the path first.
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return "", settle(OpCreateDir, path, fmt.Errorf("create directory %s: %w", path, err))
	}
	return Created, nil
}

// DeleteDir removes the category directory tree. Removal follows the
// OpDeleteDir policy: errors are logged and a partially removed tree is
// reported as Deleted.
func (m *Mirror) DeleteDir(c *models.Category) (Outcome, error) {
	if checkCategory(c) != nil {
		return NotFound, nil
	}
	path := m.DirPath(c)
	if !exists(path) {
		return NotFound, nil
	}
	if err := settle(OpDeleteDir, path, os.RemoveAll(path)); err != nil {
		return "", fmt.Errorf("delete directory %s: %w", path, err)
	}
	return Deleted, nil
}

// RenameDir moves the directory of old to the location of renamed. The
// error is ErrTargetExists when the destination is occupied and
// ErrSourceMissing when old has no directory. Missing parents of the
// destination (a namespace seen for the first time) are created.
func (m *Mirror) RenameDir(old, renamed *models.Category) (Outcome, error) {
	if err := checkCategory(renamed); err != nil {
		return RenameFailed, err
	}
	src := m.DirPath(old)
	dst := m.DirPath(renamed)
	if src == dst {
		return Renamed, nil
	}
	if exists(dst) {
		return RenameFailed, fmt.Errorf("rename %s: %w", dst, ErrTargetExists)
	}
	if !isDir(src) {
		return RenameFailed, fmt.Errorf("rename %s: %w", src, ErrSourceMissing)
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return RenameFailed, settle(OpRenameDir, dst, fmt.Errorf("create parent of %s: %w", dst, err))
	}
	if err := os.Rename(src, dst); err != nil {
		return RenameFailed, settle(OpRenameDir, dst, fmt.Errorf("rename %s to %s: %w", src, dst, err))
	}
	return Renamed, nil
}

// ListEntries returns the names of entries directly inside the category
// directory, or an empty slice if the directory is absent.
func (m *Mirror) ListEntries(c *models.Category) ([]string, error) {
	entries, err := os.ReadDir(m.DirPath(c))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Namespaces returns the names of the directories directly under the root,
// sorted. Hidden directories are skipped.
func (m *Mirror) Namespaces() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("read project root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RelPath returns path relative to the root using forward slashes. Used as
// an object key when files are mirrored to object storage.
func (m *Mirror) RelPath(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// checkCategory rejects namespaces and names that are not a single local
// path segment.
func checkCategory(c *models.Category) error {
	for _, seg := range []string{c.Namespace, c.Name} {
		if !localSegment(seg) {
			return fmt.Errorf("%w: %q", ErrInvalidPath, seg)
		}
	}
	return nil
}

func localSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && filepath.IsLocal(s)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dyntemplates/internal/slug"
)

// Validation limits for category and template fields.
const (
	maxDescriptionLen = 1_000
	maxContentLen     = 500_000
)

// validateCategory checks category inputs and returns the first error found.
// Path safety of the names is checked again by the service.
func validateCategory(namespace, name string, description *string) string {
	if strings.TrimSpace(namespace) == "" {
		return "Namespace is required."
	}
	if strings.TrimSpace(name) == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > slug.MaxLen {
		return "Category name is too long (max 100 characters)."
	}
	if !slug.Valid(name) {
		return invalidName("Category", name)
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)."
	}
	return ""
}

// validateTemplate checks template inputs and returns the first error found.
func validateTemplate(name, content string) string {
	if strings.TrimSpace(name) == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > slug.MaxLen {
		return "Template name is too long (max 100 characters)."
	}
	if !slug.Valid(name) {
		return invalidName("Template", name)
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Template content is too long (max 500,000 characters)."
	}
	return ""
}

// invalidName explains the accepted name shape and, when one exists, offers
// a usable alternative.
func invalidName(kind, name string) string {
	msg := kind + " name may only contain letters, digits, '.', '_' and '-', and must start with a letter or digit."
	if suggestion := slug.Generate(name); suggestion != "" {
		msg += fmt.Sprintf(" Try %q.", suggestion)
	}
	return msg
}

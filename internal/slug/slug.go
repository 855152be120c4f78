// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug checks and generates names that are safe to use as a single
// directory or file name segment (namespaces, categories, templates).
package slug

import (
	"regexp"
	"strings"
	"unicode/utf8"

	gosimple "github.com/gosimple/slug"
)

// MaxLen is the longest accepted segment, in runes.
const MaxLen = 100

// validSegment is the accepted shape of a stored name.
var validSegment = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Generate creates a segment-safe name from the given string. Accented
// letters are transliterated; the result is at most MaxLen bytes and is
// either empty or Valid.
// Example: "Welcome Email (v2)" → "welcome-email-v2"
func Generate(s string) string {
	result := gosimple.Make(s)
	if len(result) > MaxLen {
		result = strings.TrimRight(result[:MaxLen], "-_")
	}
	return result
}

// Valid reports whether s can be used verbatim as one path segment: it must
// start with a letter or digit, contain only letters, digits, '.', '_' and
// '-', never contain "..", and be at most MaxLen runes long.
func Valid(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxLen {
		return false
	}
	if strings.Contains(s, "..") {
		return false
	}
	return validSegment.MatchString(s)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import "github.com/microcosm-cc/bluemonday"

// previewPolicy strips scripts and event handlers from preview output. The
// class and inline style attributes emitted by the highlighter are kept.
var previewPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("pre", "span", "code")
	return p
}()

// Sanitize makes rendered HTML safe to embed in the admin editor. Stored
// template content is never passed through it.
func Sanitize(html string) string {
	return previewPolicy.Sanitize(html)
}

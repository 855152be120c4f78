// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"dyntemplates/internal/engine"
	"dyntemplates/internal/markdown"
)

type previewRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"` // "markdown" (default) or "html"
}

type previewResponse struct {
	HTML            string `json:"html"`
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
}

// TemplatePreview renders unsaved content for the editor. Markdown is
// converted to HTML and the output is sanitized before it is returned. The
// raw content is checked as Go template syntax so an invalid template is
// flagged before it is saved.
func (a *Admin) TemplatePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTemplate("preview", req.Content); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}

	html := req.Content
	switch req.Format {
	case "", "markdown":
		rendered, err := markdown.ToHTML(req.Content)
		if err != nil {
			writeError(w, r, err)
			return
		}
		html = rendered
	case "html":
	default:
		writeMessage(w, http.StatusUnprocessableEntity, "Format must be markdown or html.")
		return
	}

	resp := previewResponse{HTML: markdown.Sanitize(html), Valid: true}
	if err := engine.ValidateTemplate(req.Content); err != nil {
		resp.Valid = false
		resp.ValidationError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"dyntemplates/internal/middleware"
	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
	"dyntemplates/internal/service"
	"dyntemplates/internal/syncjob"
)

// EventLister returns the most recent sync events.
type EventLister interface {
	Recent(ctx context.Context, limit int) ([]models.SyncEvent, error)
}

// Admin groups the admin API handlers.
type Admin struct {
	svc         *service.Service
	job         *syncjob.Job
	events      EventLister
	syncWorkers int
}

// NewAdmin creates a new Admin handler group. syncWorkers is the default
// worker count of the bulk sync endpoint.
func NewAdmin(svc *service.Service, job *syncjob.Job, events EventLister, syncWorkers int) *Admin {
	return &Admin{
		svc:         svc,
		job:         job,
		events:      events,
		syncWorkers: syncWorkers,
	}
}

// categoryResponse is a category with its live directory state.
type categoryResponse struct {
	models.Category
	Directory       string `json:"directory"`
	DirectoryExists bool   `json:"directory_exists"`
}

func (a *Admin) categoryView(c *models.Category) categoryResponse {
	m := a.svc.Mirror()
	return categoryResponse{
		Category:        *c,
		Directory:       m.RelPath(m.DirPath(c)),
		DirectoryExists: a.svc.DirectoryExists(c),
	}
}

// templateResponse is a template with its derived file path.
type templateResponse struct {
	models.Template
	File       string `json:"file,omitempty"`
	FileExists bool   `json:"file_exists"`
}

func (a *Admin) templateView(t *models.Template) templateResponse {
	m := a.svc.Mirror()
	resp := templateResponse{Template: *t}
	if path, err := m.FilePath(t); err == nil {
		resp.File = m.RelPath(path)
		resp.FileExists = m.FileExists(t)
	}
	return resp
}

// --- Namespaces ---

// Namespaces lists the known namespaces.
func (a *Admin) Namespaces(w http.ResponseWriter, r *http.Request) {
	ns, err := a.svc.Namespaces(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ns == nil {
		ns = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"namespaces": ns})
}

// --- Categories ---

type categoryRequest struct {
	Namespace       string  `json:"namespace"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	CreateDirectory bool    `json:"create_directory"`
	SyncDirectory   bool    `json:"sync_directory"`
}

func (req *categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{
		Namespace:   strings.TrimSpace(req.Namespace),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
}

// CategoriesList returns all categories.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, a.categoryView(&cats[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// CategoryGet returns one category.
func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := a.svc.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.categoryView(c))
}

// CategoryCreate stores a new category and, if asked, creates its directory.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategory(req.Namespace, req.Name, req.Description); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c, out, err := a.svc.CreateCategory(r.Context(), req.input(), middleware.ActorFromCtx(r.Context()), req.CreateDirectory)
	if err != nil && c == nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"category": a.categoryView(c)}
	if out != "" {
		resp["outcome"] = outcomeResponse{Outcome: out, Message: outcomeMessage(out, a.categoryView(c).Directory)}
	}
	if err != nil {
		// The record exists; only the directory failed.
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// CategoryUpdate edits a category. With sync_directory the directory
// follows a namespace or name change.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategory(req.Namespace, req.Name, req.Description); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c, change, err := a.svc.UpdateCategory(r.Context(), id, req.input(), middleware.ActorFromCtx(r.Context()), req.SyncDirectory)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"category": a.categoryView(c)}
	if change.Outcome != "" {
		msg := outcomeMessage(change.Outcome, a.categoryView(c).Directory)
		if change.Notice != "" {
			msg += " " + strings.ToUpper(change.Notice[:1]) + change.Notice[1:] + "."
		}
		resp["outcome"] = outcomeResponse{Outcome: change.Outcome, Message: msg}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CategoryDelete removes a category, its templates and its directory.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := a.svc.DeleteCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOutcome(w, out, "Directory")
}

// DirectoryCreate creates the category directory.
func (a *Admin) DirectoryCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := a.svc.CreateDirectory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.svc.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOutcome(w, out, a.categoryView(c).Directory)
}

// DirectoryDelete removes the category directory tree.
func (a *Admin) DirectoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := a.svc.DeleteDirectory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOutcome(w, out, "Directory")
}

// DirectoryEntries lists the names inside the category directory.
func (a *Admin) DirectoryEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	entries, err := a.svc.ListEntries(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"entries": entries})
}

// --- Templates ---

type templateRequest struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	IsActive   *bool     `json:"is_active"`
}

func (req *templateRequest) input() service.TemplateInput {
	return service.TemplateInput{
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
		Content:    req.Content,
		IsActive:   req.IsActive,
	}
}

// TemplatesList returns templates, filtered by ?category_id= when given.
func (a *Admin) TemplatesList(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid category_id.")
			return
		}
		categoryID = &id
	}

	list, err := a.svc.ListTemplates(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]templateResponse, 0, len(list))
	for i := range list {
		out = append(out, a.templateView(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// TemplateGet returns one template.
func (a *Admin) TemplateGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, err := a.svc.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.templateView(t))
}

// TemplateCreate stores a new template. No file is written.
func (a *Admin) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTemplate(req.Name, req.Content); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}
	t, err := a.svc.CreateTemplate(r.Context(), req.input(), middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.templateView(t))
}

// TemplateUpdate edits a template in place.
func (a *Admin) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTemplate(req.Name, req.Content); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}
	t, err := a.svc.UpdateTemplate(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.templateView(t))
}

// TemplateDelete removes the template record. Its file stays.
func (a *Admin) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reviseRequest struct {
	Content *string `json:"content"`
}

// TemplateRevise replaces a template with a new revision. Without content
// the current content is carried over.
func (a *Admin) TemplateRevise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req reviseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	} else {
		old, err := a.svc.GetTemplate(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		content = old.Content
	}
	if msg := validateTemplate("revision", content); msg != "" {
		writeMessage(w, http.StatusUnprocessableEntity, msg)
		return
	}

	revised, out, err := a.svc.ReviseTemplate(r.Context(), id, content, middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := a.templateView(revised)
	writeJSON(w, http.StatusCreated, map[string]any{
		"template": view,
		"outcome":  outcomeResponse{Outcome: out, Message: outcomeMessage(out, view.File)},
	})
}

// FileWrite materializes the template's file.
func (a *Admin) FileWrite(w http.ResponseWriter, r *http.Request) {
	a.fileAction(w, r, a.svc.WriteFile)
}

// FileDelete removes the template's file.
func (a *Admin) FileDelete(w http.ResponseWriter, r *http.Request) {
	a.fileAction(w, r, a.svc.DeleteFile)
}

func (a *Admin) fileAction(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID) (mirror.Outcome, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := action(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	subject := "File"
	if t, err := a.svc.GetTemplate(r.Context(), id); err == nil {
		subject = a.templateView(t).File
	}
	writeOutcome(w, out, subject)
}

// TemplateStatus reports how the template's file compares to its record.
func (a *Admin) TemplateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, st, err := a.svc.Status(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     t.ID,
		"file":   a.templateView(t).File,
		"status": st,
	})
}

// TemplateHistory returns the revision chain, newest first.
func (a *Admin) TemplateHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	chain, err := a.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if chain == nil {
		chain = []models.Template{}
	}
	writeJSON(w, http.StatusOK, chain)
}

// --- Sync ---

type syncRequest struct {
	Namespaces []string `json:"namespaces"`
	Workers    int      `json:"workers"`
}

// Sync runs the bulk sync job and returns its report.
func (a *Admin) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	workers := req.Workers
	if workers <= 0 {
		workers = a.syncWorkers
	}

	report, err := a.job.Run(r.Context(), req.Namespaces, workers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if len(report.Failed()) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, report)
}

// Events returns recent sync events. ?limit= defaults to 50, max 500.
func (a *Admin) Events(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "Invalid limit.")
			return
		}
		limit = min(n, 500)
	}
	events, err := a.events.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []models.SyncEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// dyntemplates server. Routes are split into the JSON admin API and the
// public template view.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dyntemplates/internal/handlers"
	"dyntemplates/internal/middleware"
)

// New creates and returns the configured Chi router. health backs /health
// with a database check; when nil a static answer is served. syncLimiter
// guards the bulk sync endpoint and may be nil.
func New(admin *handlers.Admin, public *handlers.Public, health *handlers.Health, syncLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	if health != nil {
		r.Get("/health", health.Check)
	} else {
		r.Get("/health", healthHandler)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.Actor)
		r.Use(middleware.RequireActor)

		r.Get("/namespaces", admin.Namespaces)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.CategoriesList)
			r.Post("/", admin.CategoryCreate)
			r.Get("/{id}", admin.CategoryGet)
			r.Put("/{id}", admin.CategoryUpdate)
			r.Delete("/{id}", admin.CategoryDelete)
			r.Post("/{id}/directory", admin.DirectoryCreate)
			r.Delete("/{id}/directory", admin.DirectoryDelete)
			r.Get("/{id}/entries", admin.DirectoryEntries)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", admin.TemplatesList)
			r.Post("/", admin.TemplateCreate)
			r.Post("/preview", admin.TemplatePreview)
			r.Get("/{id}", admin.TemplateGet)
			r.Put("/{id}", admin.TemplateUpdate)
			r.Delete("/{id}", admin.TemplateDelete)
			r.Post("/{id}/revise", admin.TemplateRevise)
			r.Post("/{id}/file", admin.FileWrite)
			r.Delete("/{id}/file", admin.FileDelete)
			r.Get("/{id}/status", admin.TemplateStatus)
			r.Get("/{id}/history", admin.TemplateHistory)
		})

		r.Group(func(r chi.Router) {
			if syncLimiter != nil {
				r.Use(syncLimiter.Middleware)
			}
			r.Post("/sync", admin.Sync)
		})
		r.Get("/events", admin.Events)
	})

	// Public view of materialized templates.
	r.Get("/templates/{id}", public.TemplateView)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

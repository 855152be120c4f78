// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package syncjob materializes every active template of one or more
// namespaces to disk. Category directories are ensured sequentially, then
// template files are written by a bounded pool of workers. A failing
// template never stops the others; every failure is reported on its own.
package syncjob

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/models"
)

// TemplateSource lists the active templates of a namespace, category
// loaded, ordered by ID.
type TemplateSource interface {
	ListActiveByNamespace(ctx context.Context, namespace string) ([]models.Template, error)
}

// Materializer creates category directories and writes template files.
type Materializer interface {
	EnsureDirectory(ctx context.Context, c *models.Category) (mirror.Outcome, error)
	Materialize(ctx context.Context, t *models.Template) (mirror.Outcome, error)
	Namespaces(ctx context.Context) ([]string, error)
	Mirror() *mirror.Mirror
}

// DirEvent is a category directory created during a run.
type DirEvent struct {
	Namespace string `json:"namespace"`
	Category  string `json:"category"`
	Path      string `json:"path"`
}

// Result is the outcome of one template.
type Result struct {
	TemplateID uuid.UUID      `json:"template_id"`
	Template   string         `json:"template"`
	Path       string         `json:"path"`
	Outcome    mirror.Outcome `json:"outcome,omitempty"`
	Err        error          `json:"-"`
	Error      string         `json:"error,omitempty"`
}

// Report collects everything a run did.
type Report struct {
	Namespaces  []string   `json:"namespaces"`
	DirsCreated []DirEvent `json:"dirs_created"`
	Results     []Result   `json:"results"`
}

// Failed returns the results that ended in an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// MaxConcurrency caps the worker count of a run.
const MaxConcurrency = 32

// DefaultConcurrency returns the worker count used when none is given.
func DefaultConcurrency() int {
	return min(MaxConcurrency, runtime.NumCPU()+4)
}

// Job runs bulk syncs.
type Job struct {
	templates TemplateSource
	target    Materializer
}

// New creates a Job.
func New(templates TemplateSource, target Materializer) *Job {
	return &Job{templates: templates, target: target}
}

// Run syncs the given namespaces, or every known namespace when none are
// given. concurrency <= 0 selects DefaultConcurrency and larger values are
// capped at MaxConcurrency. The returned error is
// only set when the run could not start or a namespace could not be listed;
// per-template failures are in the report.
func (j *Job) Run(ctx context.Context, namespaces []string, concurrency int) (*Report, error) {
	if len(namespaces) == 0 {
		known, err := j.target.Namespaces(ctx)
		if err != nil {
			return nil, fmt.Errorf("list namespaces: %w", err)
		}
		namespaces = known
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency()
	}
	concurrency = min(concurrency, MaxConcurrency)

	report := &Report{Namespaces: namespaces, DirsCreated: []DirEvent{}, Results: []Result{}}
	for _, ns := range namespaces {
		if err := j.syncNamespace(ctx, ns, concurrency, report); err != nil {
			return report, err
		}
	}

	slog.Info("bulk sync finished",
		"namespaces", len(namespaces),
		"dirs_created", len(report.DirsCreated),
		"templates", len(report.Results),
		"failed", len(report.Failed()),
	)
	return report, nil
}

// categoryGroup is the templates of one category, in first-seen order.
type categoryGroup struct {
	category  *models.Category
	templates []int // indexes into the namespace's template slice
}

func (j *Job) syncNamespace(ctx context.Context, ns string, concurrency int, report *Report) error {
	templates, err := j.templates.ListActiveByNamespace(ctx, ns)
	if err != nil {
		return fmt.Errorf("list templates of %s: %w", ns, err)
	}

	var groups []*categoryGroup
	byCategory := make(map[uuid.UUID]*categoryGroup)
	for i := range templates {
		t := &templates[i]
		g, ok := byCategory[t.CategoryID]
		if !ok {
			g = &categoryGroup{category: t.Category}
			byCategory[t.CategoryID] = g
			groups = append(groups, g)
		}
		g.templates = append(g.templates, i)
	}

	m := j.target.Mirror()
	results := make([]Result, len(templates))
	for i := range templates {
		t := &templates[i]
		results[i] = Result{TemplateID: t.ID, Template: t.String()}
		if path, err := m.FilePath(t); err == nil {
			results[i].Path = m.RelPath(path)
		}
	}

	// Directories are created before any write is dispatched, one category
	// at a time. A category that cannot be created fails its templates.
	var ready []*categoryGroup
	for _, g := range groups {
		out, err := j.target.EnsureDirectory(ctx, g.category)
		if err != nil {
			for _, i := range g.templates {
				results[i].Err = fmt.Errorf("create directory: %w", err)
			}
			continue
		}
		if out == mirror.Created {
			report.DirsCreated = append(report.DirsCreated, DirEvent{
				Namespace: g.category.Namespace,
				Category:  g.category.Name,
				Path:      m.RelPath(m.DirPath(g.category)),
			})
		}
		ready = append(ready, g)
	}

	// Each worker owns a distinct file and a distinct results slot.
	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for _, g := range ready {
		for _, i := range g.templates {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					return nil
				}
				out, err := j.target.Materialize(ctx, &templates[i])
				results[i].Outcome = out
				results[i].Err = err
				return nil
			})
		}
	}
	_ = eg.Wait()

	for i := range results {
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
			slog.Warn("template sync failed", "template", results[i].Template, "error", results[i].Err)
		}
	}
	report.Results = append(report.Results, results...)
	return nil
}

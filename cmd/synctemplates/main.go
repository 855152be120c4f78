// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command synctemplates writes every active template of the selected
// namespaces to disk, creating category directories as needed.
//
//	synctemplates [-workers N] [-app namespace]...
//
// Without -app every known namespace is synced. The exit status is 1 when
// any directory or template failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dyntemplates/internal/cache"
	"dyntemplates/internal/config"
	"dyntemplates/internal/database"
	"dyntemplates/internal/engine"
	"dyntemplates/internal/mirror"
	"dyntemplates/internal/service"
	"dyntemplates/internal/storage"
	"dyntemplates/internal/store"
	"dyntemplates/internal/syncjob"
)

// appList collects repeated -app flags.
type appList []string

func (a *appList) String() string { return strings.Join(*a, ",") }

func (a *appList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*a = append(*a, p)
		}
	}
	return nil
}

func main() {
	// Progress goes to stdout; logs stay on stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var apps appList
	fs := flag.NewFlagSet("synctemplates", flag.ExitOnError)
	workers := fs.Int("workers", cfg.SyncWorkers, "number of templates written concurrently")
	fs.Var(&apps, "app", "namespace to sync (repeatable, default all)")
	fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, cfg, apps, *workers, os.Stdout)
	if err != nil {
		slog.Error("sync failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run wires the job against the configured database and mirror and prints
// the report. It returns the number of failed templates.
func run(ctx context.Context, cfg *config.Config, apps []string, workers int, out io.Writer) (int, error) {
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return 0, fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	templateStore := store.NewTemplateStore(db)
	m := mirror.New(cfg.TemplatesRoot)
	svc := service.New(store.NewCategoryStore(db), templateStore, m, store.NewSyncEventStore(db))
	svc.SetKnownNamespaces(cfg.KnownNamespaces)

	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		return 0, fmt.Errorf("init s3 storage: %w", err)
	}
	if storageClient != nil {
		svc.SetObjectMirror(storageClient)
	}

	// Cached views of rewritten files must not outlive the run.
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
		if err != nil {
			return 0, fmt.Errorf("connect valkey: %w", err)
		}
		defer valkeyClient.Close()
		views := cache.NewViewCache(valkeyClient, cache.DefaultViewTTL)
		svc.SetViewInvalidator(engine.New(templateStore, m, views))
	}

	report, err := syncjob.New(templateStore, svc).Run(ctx, apps, workers)
	if report != nil {
		printReport(out, report)
	}
	if err != nil {
		return 0, err
	}
	return len(report.Failed()), nil
}

func printReport(out io.Writer, report *syncjob.Report) {
	for _, d := range report.DirsCreated {
		fmt.Fprintf(out, "Created directory %s\n", d.Path)
	}
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "Failed %s: %v\n", res.Template, res.Err)
		case res.Outcome == mirror.Written:
			fmt.Fprintf(out, "Synced %s -> %s\n", res.Template, res.Path)
		default:
			fmt.Fprintf(out, "Skipped %s (%s)\n", res.Template, res.Outcome)
		}
	}
}

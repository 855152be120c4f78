// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the dynamic templates server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dyntemplates/internal/cache"
	"dyntemplates/internal/config"
	"dyntemplates/internal/database"
	"dyntemplates/internal/engine"
	"dyntemplates/internal/handlers"
	"dyntemplates/internal/middleware"
	"dyntemplates/internal/mirror"
	"dyntemplates/internal/router"
	"dyntemplates/internal/service"
	"dyntemplates/internal/storage"
	"dyntemplates/internal/store"
	"dyntemplates/internal/syncjob"
)

// Bulk sync touches every active template, so admins get a handful of runs
// per minute.
const (
	syncRateLimit  = 6
	syncRateWindow = time.Minute
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"templates_root", cfg.TemplatesRoot,
	)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, cfg.SeedNamespace); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// The rendered view cache is optional; without Valkey every view is
	// rendered from the file.
	var views *cache.ViewCache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		views = cache.NewViewCache(valkeyClient, cache.DefaultViewTTL)
	} else {
		slog.Warn("valkey not configured, view cache disabled")
	}

	categoryStore := store.NewCategoryStore(db)
	templateStore := store.NewTemplateStore(db)
	eventStore := store.NewSyncEventStore(db)

	m := mirror.New(cfg.TemplatesRoot)
	svc := service.New(categoryStore, templateStore, m, eventStore)
	svc.SetKnownNamespaces(cfg.KnownNamespaces)

	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		svc.SetObjectMirror(storageClient)
		slog.Info("s3 mirror connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, object mirror disabled")
	}

	eng := engine.New(templateStore, m, views)
	svc.SetViewInvalidator(eng)

	job := syncjob.New(templateStore, svc)

	adminHandlers := handlers.NewAdmin(svc, job, eventStore, cfg.SyncWorkers)
	publicHandlers := handlers.NewPublic(eng)
	health := handlers.NewHealth(func(ctx context.Context) (int64, error) {
		return database.Version(ctx, db)
	}, templateStore)

	syncLimiter := middleware.NewRateLimiter(syncRateLimit, syncRateWindow)
	defer syncLimiter.Stop()

	r := router.New(adminHandlers, publicHandlers, health, syncLimiter)

	// WriteTimeout must cover a bulk sync over a large namespace.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

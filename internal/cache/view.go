// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// view.go caches the rendered output of a template view in Valkey, keyed by
// template ID. Entries are dropped whenever the template's file is written,
// deleted, or replaced by a new revision.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// viewKeyPrefix is the Valkey key prefix for cached views.
	viewKeyPrefix = "view:"

	// DefaultViewTTL is how long a rendered view stays cached.
	DefaultViewTTL = 5 * time.Minute
)

// ViewCache manages rendered view caching in Valkey. All methods are
// no-ops on a nil *ViewCache so callers need not check whether caching
// is configured.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a new view cache backed by the given Valkey client.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl == 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// ViewKey returns the cache key for a template.
func ViewKey(id uuid.UUID) string {
	return viewKeyPrefix + id.String()
}

// Get retrieves cached output for a template. Returns false on miss.
func (vc *ViewCache) Get(ctx context.Context, id uuid.UUID) ([]byte, bool) {
	if vc == nil {
		return nil, false
	}
	val, err := vc.client.Get(ctx, ViewKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("view cache get error", "id", id, "error", err)
		return nil, false
	}
	slog.Debug("view cache hit", "id", id)
	return val, true
}

// Set stores rendered output for a template with the configured TTL.
func (vc *ViewCache) Set(ctx context.Context, id uuid.UUID, html []byte) {
	if vc == nil {
		return
	}
	if err := vc.client.Set(ctx, ViewKey(id), html, vc.ttl).Err(); err != nil {
		slog.Warn("view cache set error", "id", id, "error", err)
	}
}

// Invalidate removes the cached views of the given templates.
func (vc *ViewCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if vc == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ViewKey(id)
	}
	if err := vc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("view cache invalidate error", "ids", ids, "error", err)
		return
	}
	slog.Debug("view cache invalidated", "count", len(ids))
}

// InvalidateAll removes all cached views by scanning for the prefix.
// Used after a category rename or delete, which moves or removes every
// file in the category.
func (vc *ViewCache) InvalidateAll(ctx context.Context) {
	if vc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := vc.client.Scan(ctx, cursor, viewKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("view cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := vc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("view cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("view cache fully cleared", "deleted", deleted)
	}
}

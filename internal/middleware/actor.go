// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package middleware provides HTTP middleware for the dyntemplates server.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the acting administrator's name.
	ActorKey contextKey = "actor"

	// ActorHeader carries the administrator's name. Authentication happens
	// in front of this service; the header is trusted as given.
	ActorHeader = "X-Admin-User"

	maxActorLen = 150
)

// Actor reads the administrator's name from ActorHeader and stores it in
// the request context. Downstream handlers can access it via ActorFromCtx().
// This middleware does NOT enforce presence; see RequireActor.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(ActorHeader))
		if name != "" && utf8.RuneCountInString(name) <= maxActorLen {
			r = r.WithContext(context.WithValue(r.Context(), ActorKey, name))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActor rejects state-changing requests that carry no actor with
// 401. Safe methods pass through so listings stay readable.
// Must be applied after Actor in the middleware chain.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if ActorFromCtx(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": ActorHeader + " header is required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromCtx returns the actor stored by Actor, or "" if none.
func ActorFromCtx(ctx context.Context) string {
	name, _ := ctx.Value(ActorKey).(string)
	return name
}

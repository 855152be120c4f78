// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicBody is the JSON error returned for a recovered panic. It matches
// the shape of every other admin API error.
const panicBody = `{"error":"Internal Server Error"}`

// Recoverer turns a handler panic into a logged 500. A panic with
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
// When the handler already started the response nothing more is written.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracked := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			attrs := []any{
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			}
			if actor := r.Header.Get(ActorHeader); actor != "" {
				attrs = append(attrs, "actor", actor)
			}
			slog.Error("panic recovered", attrs...)

			if tracked.written {
				return
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(panicBody))
		}()

		next.ServeHTTP(tracked, r)
	})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON admin API for template categories
// and templates, and the public view that renders materialized files.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dyntemplates/internal/mirror"
	"dyntemplates/internal/service"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// outcomeResponse is the body returned for directory and file actions.
type outcomeResponse struct {
	Outcome mirror.Outcome `json:"outcome"`
	Message string         `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps service and mirror errors to HTTP statuses. Anything
// unrecognized is logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("admin request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, status, "Internal error.")
		return
	}
	writeMessage(w, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNameConflict),
		errors.Is(err, mirror.ErrTargetExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrUnknownNamespace),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrInactive),
		errors.Is(err, mirror.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// parseID reads the {id} URL parameter.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid ID.")
		return uuid.Nil, false
	}
	return id, true
}

// outcomeMessage turns an outcome into the sentence shown to the admin.
func outcomeMessage(out mirror.Outcome, subject string) string {
	switch out {
	case mirror.Created:
		return fmt.Sprintf("Directory %s created.", subject)
	case mirror.AlreadyExists:
		return fmt.Sprintf("Directory %s already exists.", subject)
	case mirror.Deleted:
		return fmt.Sprintf("%s deleted.", subject)
	case mirror.NotFound:
		return fmt.Sprintf("%s does not exist.", subject)
	case mirror.Renamed:
		return fmt.Sprintf("Directory moved to %s.", subject)
	case mirror.RenameFailed:
		return fmt.Sprintf("Directory could not be moved to %s.", subject)
	case mirror.Written:
		return fmt.Sprintf("File %s written.", subject)
	case mirror.SkippedCategoryMissing:
		return fmt.Sprintf("File %s not written: create the category directory first.", subject)
	default:
		return ""
	}
}

func writeOutcome(w http.ResponseWriter, out mirror.Outcome, subject string) {
	writeJSON(w, http.StatusOK, outcomeResponse{Outcome: out, Message: outcomeMessage(out, subject)})
}

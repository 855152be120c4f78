// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mirror

import "log/slog"

// Outcome is the non-error result of a directory or file operation. None of
// these are failures; callers surface them as messages.
type Outcome string

const (
	Created                Outcome = "created"
	AlreadyExists          Outcome = "already_exists"
	Deleted                Outcome = "deleted"
	NotFound               Outcome = "not_found"
	Renamed                Outcome = "renamed"
	RenameFailed           Outcome = "rename_failed"
	Written                Outcome = "written"
	SkippedCategoryMissing Outcome = "skipped_category_missing"
)

// Status is the point-in-time comparison of a template record with its file.
type Status string

const (
	StatusInactive        Status = "inactive"
	StatusCategoryMissing Status = "category_missing"
	StatusFileMissing     Status = "file_missing"
	StatusSynced          Status = "synced"
	StatusOutOfSync       Status = "out_of_sync"
)

// Op names a mirror operation.
type Op string

const (
	OpCreateDir  Op = "create_dir"
	OpDeleteDir  Op = "delete_dir"
	OpRenameDir  Op = "rename_dir"
	OpWriteFile  Op = "write_file"
	OpDeleteFile Op = "delete_file"
)

// ErrorPolicy names how an operation treats filesystem errors.
type ErrorPolicy int

const (
	// Strict operations return every filesystem error to the caller.
	Strict ErrorPolicy = iota
	// BestEffort operations swallow errors and report the goal as reached.
	BestEffort
)

// Policy returns the error policy of op. Only directory deletion is
// best-effort; creation, rename, writes and file deletion are strict.
func Policy(op Op) ErrorPolicy {
	if op == OpDeleteDir {
		return BestEffort
	}
	return Strict
}

// settle applies the policy of op to a filesystem error. A best-effort
// operation logs err at debug and reports success.
func settle(op Op, path string, err error) error {
	if err == nil || Policy(op) == Strict {
		return err
	}
	slog.Debug("mirror error ignored", "op", string(op), "path", path, "error", err)
	return nil
}

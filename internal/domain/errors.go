// Package domain holds the pure task rules: validation, status changes,
// subtask progress and dashboard statistics. Nothing here does I/O.
package domain

import "errors"

var (
	// ErrValidation marks input rejected before reaching the store.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to a task, list, tag or subtask that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a store or network failure; the caller may retry.
	ErrTransient = errors.New("temporarily unavailable")
	// ErrConflict marks an operation the current state does not allow.
	ErrConflict = errors.New("conflict")
)

var (
	errTitleRequired       = errors.New("title is required")
	errNameRequired        = errors.New("name is required")
	errSubtaskTitleMissing = errors.New("subtask title is required")
	errInvalidDueTime      = errors.New("due_time must be HH:MM")
	errInvalidDueDate      = errors.New("due_date must be YYYY-MM-DD")
	errInvalidStatus       = errors.New("unknown status")
	errInvalidPriority     = errors.New("unknown priority")
)

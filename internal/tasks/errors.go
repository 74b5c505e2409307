package tasks

import "errors"

var (
	// ErrNotFound means no task with that id exists for the caller.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTask wraps every validation failure.
	ErrInvalidTask = errors.New("invalid task")
	// ErrFilterActive rejects drag-and-drop while a search or filter narrows the view.
	ErrFilterActive = errors.New("cannot move tasks while a search or filter is active")
	// ErrNoUser is returned by mutations called without an owner.
	ErrNoUser = errors.New("user id is required")
)

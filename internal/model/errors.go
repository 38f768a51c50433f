package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrConflict is returned when a resource changed since it was read.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned when the caller is not the owner or fails the authorization gate.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAuthID is returned when a role ID is one of the reserved IDs.
	ErrInvalidAuthID = errors.New("invalid auth id")
	// ErrNotConcluded is returned when a task is already completed or canceled.
	// The name is kept for compatibility with existing clients even if it reads inverted.
	ErrNotConcluded = errors.New("not concluded")
	// ErrInvalidTransition is returned when a task status change is not allowed.
	ErrInvalidTransition = errors.New("invalid transition")
)

// NotConcludedError is returned when mutating a task that is in a terminal status.
type NotConcludedError struct {
	TaskID TaskID
}

func (e NotConcludedError) Error() string {
	return fmt.Sprintf("task %d: %s", e.TaskID, ErrNotConcluded)
}

func (e NotConcludedError) Unwrap() error { return ErrNotConcluded }

// InvalidTransitionError is returned when a lifecycle operation finds the task in the wrong status.
type InvalidTransitionError struct {
	TaskID TaskID
	From   TaskStatus
	To     TaskStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %d: %s -> %s: %s", e.TaskID, e.From, e.To, ErrInvalidTransition)
}

func (e InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// TaskNotFoundError is returned when a task ID does not exist.
type TaskNotFoundError struct {
	TaskID TaskID
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %d: %s", e.TaskID, ErrNotFound)
}

func (e TaskNotFoundError) Unwrap() error { return ErrNotFound }

package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every operation failure wraps exactly one of them.
var (
	ErrValidation = errors.New("validation error")
	ErrPermission = errors.New("permission error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBackend    = errors.New("backend error")
)

// Error is a user-facing failure of a single operation.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func permissionError(msg string) error {
	return &Error{Kind: ErrPermission, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func conflictError(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// backendError wraps a store or transport failure; the message is passed
// through to the caller.
func backendError(action string, err error) error {
	return &Error{Kind: ErrBackend, Message: fmt.Sprintf("failed to %s: %v", action, err), Err: err}
}

// wrapValidation turns a domain rule error into a validation error while
// keeping it reachable through errors.Is.
func wrapValidation(err error) error {
	return &Error{Kind: ErrValidation, Message: err.Error(), Err: err}
}

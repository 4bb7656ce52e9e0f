package domain

import "errors"

// Domain errors represent business logic failures.
// Every core operation fails with exactly one of these kinds, wrapped with
// enough context (offending id or field) to render a message.
var (
	// ErrInvalidArgument indicates a malformed id, an out-of-range value,
	// or a missing required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate id on an append-only write,
	// or a stale optimistic check.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState indicates an illegal alert status transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotImplemented indicates a store was not wired into a service.
	ErrNotImplemented = errors.New("not implemented")
)

// Wire codes reported to clients alongside the error message.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeInternal     = "INTERNAL"
)

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	default:
		return CodeInternal
	}
}

package domain

import "errors"

// Error kinds. Every concrete error returned by the core wraps exactly one of
// these, so the transport layer can map them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Authentication failures, in the order the gate checks them.
var (
	ErrNotAuthenticated = newError(ErrUnauthorized, "not authenticated")
	ErrTokenRevoked     = newError(ErrUnauthorized, "revoked")
	ErrTokenInvalid     = newError(ErrUnauthorized, "invalid or expired")
	ErrUnknownSubject   = newError(ErrUnauthorized, "unknown subject")
)

// Scope violations are reported the same way as missing records.
var (
	ErrUserNotFound     = newError(ErrNotFound, "user not found")
	ErrManagerNotFound  = newError(ErrNotFound, "manager not found")
	ErrEmployeeNotFound = newError(ErrNotFound, "employee not found")
	ErrTaskNotFound     = newError(ErrNotFound, "task not found")
)

var (
	ErrUserExists           = newError(ErrConflict, "username or email already exists")
	ErrConcurrentUpdate     = newError(ErrConflict, "task was modified concurrently")
	ErrManagerHasDependents = newError(ErrConflict, "manager still has employees or issued tasks")
)

// Invalid returns an ErrInvalidInput error carrying msg.
func Invalid(msg string) error {
	return newError(ErrInvalidInput, msg)
}

// RoleRequired returns the ErrForbidden error for a gate requiring role.
func RoleRequired(role Role) error {
	return newError(ErrForbidden, string(role)+" access required")
}

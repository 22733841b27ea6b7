package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a user, data room, folder or file does not exist
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates missing or invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates a missing token or an entity owned by someone else
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// Is lets errors.Is match typed errors against the sentinels below
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage error")
)

// ConflictError represents a sibling name collision or a username/email collision
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // user, data_room, folder, file
	ResourceID   int64  // ID of the existing resource, 0 when unknown
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError reports a failed filesystem operation on stored content.
// It is kept distinct from internal errors so operators can reconcile
// database rows whose bytes are missing.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) StatusCode() int { return http.StatusInternalServerError }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Kind returns the short error kind reported to clients
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "bad_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "internal_error"
	}
}

// NotFound builds a NotFoundError for the given resource
func NotFound(resource string, id int64) error {
	return &NotFoundError{Message: fmt.Sprintf("%s %d not found", resource, id)}
}

// Unauthorized builds an UnauthorizedError for the given resource
func Unauthorized(resource string, id int64) error {
	return &UnauthorizedError{Message: fmt.Sprintf("not the owner of %s %d", resource, id)}
}

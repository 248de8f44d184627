package errs

import (
	"errors"
	"fmt"
)

// Sentinel domain errors for mapping to HTTP and WebSocket error codes in handlers.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSyncFailed      = errors.New("video sync failed")
	ErrUnauthorized    = errors.New("unauthorized")
)

// ValidationError reports bad or missing caller input. Always recoverable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DatabaseError wraps a durable-store failure with the operation that hit it.
// The wrapped driver error is for logs; callers surface a generic message.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string { return "database: " + e.Op + ": " + e.Err.Error() }
func (e *DatabaseError) Unwrap() error { return e.Err }

// Database wraps err as a DatabaseError for operation op. Returns nil for nil err.
func Database(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Op: op, Err: err}
}

// Wire error codes sent in session-error payloads and reused by REST handlers.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSyncFailed      = "SYNC_FAILED"
	CodeDatabase        = "DATABASE_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternal        = "INTERNAL_ERROR"
)

// CodeOf maps any error to its wire code.
func CodeOf(err error) string {
	var ve *ValidationError
	var de *DatabaseError
	switch {
	case errors.As(err, &ve):
		return CodeValidation
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrSyncFailed):
		return CodeSyncFailed
	case errors.As(err, &de):
		return CodeDatabase
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}

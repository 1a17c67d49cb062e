// Package errors provides error code definitions for the TaskFlow client.
package errors

import "fmt"

// ErrorCode identifies a failure class surfaced to callers and the UI.
type ErrorCode string

const (
	// General errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
	ErrInvalid  ErrorCode = "INVALID_INPUT"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// REST boundary errors
	ErrAPIRejected  ErrorCode = "API_REJECTED"
	ErrTransport    ErrorCode = "TRANSPORT_ERROR"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// Live stream errors
	ErrStreamClosed   ErrorCode = "STREAM_CLOSED"
	ErrConnectionLost ErrorCode = "CONNECTION_LOST"

	// Conflict errors
	ErrNoConflict   ErrorCode = "NO_CONFLICT_PENDING"
	ErrConflictSave ErrorCode = "CONFLICT_SAVE_FAILED"

	// Journal errors
	ErrJournal ErrorCode = "JOURNAL_ERROR"
)

// AppError represents a client error with a code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// Message returns the user-facing message of err: the AppError message when
// present, otherwise the plain error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

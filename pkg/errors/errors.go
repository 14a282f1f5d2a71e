package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels classify failures independently of the front-end reporting them
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnection means the config server could not be reached at all
	ErrConnection = errors.New("cannot connect to server")
	// ErrRemote means the config server answered with a non-2xx status
	ErrRemote = errors.New("config server error")

	ErrSessionExpired = errors.New("session expired")
	ErrNoChanges      = errors.New("no changes to commit")
	// ErrInvalidState means an editor or dialog transition was not allowed
	ErrInvalidState = errors.New("invalid state")
)

// ConnectionMessage is shown whenever the backend is unreachable.
const ConnectionMessage = "Cannot connect to server. Please check that the config server is running and reachable."

// ErrorCode is the HTTP status an error maps to
type ErrorCode int

const (
	CodeBadRequest         ErrorCode = http.StatusBadRequest
	CodeUnauthorized       ErrorCode = http.StatusUnauthorized
	CodeNotFound           ErrorCode = http.StatusNotFound
	CodeConflict           ErrorCode = http.StatusConflict
	CodeInternal           ErrorCode = http.StatusInternalServerError
	CodeBadGateway         ErrorCode = http.StatusBadGateway
	CodeServiceUnavailable ErrorCode = http.StatusServiceUnavailable
)

// AppError carries a user-facing message, a status and the cause
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Field names the offending input for validation failures
	Field string `json:"field,omitempty"`
	Err   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// HTTPStatus returns the status the error should be reported with
func (e *AppError) HTTPStatus() int { return int(e.Code) }

// NewAppError builds an AppError
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	if err == nil {
		err = ErrNotFound
	}
	return NewAppError(CodeNotFound, resource+" not found", err)
}

func Unauthorized(message string, err error) *AppError {
	if message == "" {
		message = "authentication required"
	}
	if err == nil {
		err = ErrUnauthorized
	}
	return NewAppError(CodeUnauthorized, message, err)
}

func BadRequest(message string, err error) *AppError {
	if message == "" {
		message = "invalid request"
	}
	return NewAppError(CodeBadRequest, message, err)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, err)
}

// Connection is returned when the backend cannot be reached. The message is
// fixed so every front-end reports the same text.
func Connection(err error) *AppError {
	return NewAppError(CodeServiceUnavailable, ConnectionMessage, fmt.Errorf("%w: %v", ErrConnection, err))
}

// FromStatus wraps a non-2xx backend response, keeping its status
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}
	cause := ErrRemote
	switch status {
	case http.StatusUnauthorized:
		cause = ErrUnauthorized
	case http.StatusForbidden:
		cause = ErrForbidden
	case http.StatusNotFound:
		cause = ErrNotFound
	}
	return NewAppError(ErrorCode(status), message, cause)
}

// SessionExpired is returned once a token or session is no longer usable
func SessionExpired() *AppError {
	return NewAppError(CodeUnauthorized, "Your session has expired. Please sign in again.", ErrSessionExpired)
}

func DatabaseError(operation string, err error) *AppError {
	return NewAppError(CodeInternal, "database "+operation+" failed", err)
}

func StorageError(operation string, err error) *AppError {
	return NewAppError(CodeInternal, "storage "+operation+" failed", err)
}

// ValidationError reports bad local input on field
func ValidationError(field, message string) *AppError {
	e := NewAppError(CodeBadRequest, message, ErrInvalidInput)
	e.Field = field
	return e
}

// Message returns the user-facing message of err
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

// Status returns the HTTP status carried by err, or 500
func Status(err error) int {
	if e, ok := as(err); ok && e.Code != 0 {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	if e, ok := as(err); ok {
		return e.Code == CodeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

func IsUnauthorized(err error) bool {
	if e, ok := as(err); ok {
		return e.Code == CodeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}

func IsConflict(err error) bool {
	e, ok := as(err)
	return ok && e.Code == CodeConflict
}

// IsValidation reports whether err came from local input validation
func IsValidation(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsConnection reports whether err means the backend was unreachable
func IsConnection(err error) bool { return errors.Is(err, ErrConnection) }

func as(err error) (*AppError, bool) {
	var e *AppError
	ok := errors.As(err, &e)
	return e, ok
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a single missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// NotFoundMessage creates a 404 error with a caller supplied message. It is
// used when a lookup over several references resolves to too little.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// storeUnavailableError keeps both the sentinel and the driver error reachable
// through errors.Is.
type storeUnavailableError struct {
	op  string
	err error
}

func (e *storeUnavailableError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, ErrServiceUnavail)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, ErrServiceUnavail, e.err)
}

func (e *storeUnavailableError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrServiceUnavail}
	}
	return []error{ErrServiceUnavail, e.err}
}

// StoreUnavailable creates a 503 error for a failed store operation. The
// client only sees a generic message; op and the cause are kept for logs.
func StoreUnavailable(op string, err error) *AppError {
	return &AppError{
		Code:    "STORE_UNAVAILABLE",
		Message: "the data store is unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     &storeUnavailableError{op: op, err: err},
	}
}

// IsStoreUnavailable reports whether err was produced by a failing store.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavail)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

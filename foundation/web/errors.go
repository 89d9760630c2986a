package web

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error is used to pass an error during the request through the
// application with web specific context.
type Error struct {
	Err    error
	Status int
	Fields []FieldError
}

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (err *Error) Error() string {
	if err.Err == nil {
		return http.StatusText(err.Status)
	}
	return err.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is / errors.As.
func (err *Error) Unwrap() error {
	return err.Err
}

// ErrorResponse is the form used for API responses from failures in the API.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
	Status bool         `json:"status"`
}

// StatusOf returns the HTTP status carried by err, or 500 when err was not
// created through NewRequestError.
func StatusOf(err error) int {
	var webErr *Error
	if errors.As(err, &webErr) {
		return webErr.Status
	}
	return http.StatusInternalServerError
}

// shutdown is a type used to help with the graceful termination of the service.
type shutdown struct {
	Message string
}

func (s *shutdown) Error() string {
	return s.Message
}

// NewShutdownError returns an error that causes the framework to signal
// a graceful shutdown.
func NewShutdownError(message string) error {
	return &shutdown{message}
}

// IsShutdown checks to see if the shutdown error is contained
// in the specified error value.
func IsShutdown(err error) bool {
	var s *shutdown
	return errors.As(err, &s)
}

// Package apperr defines the error variants the HTTP boundary knows how to
// report. Each variant carries its HTTP status and the client-facing messages;
// the wrapped cause is kept for logs and never serialized.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

const (
	TitleBadRequest   = "Bad request."
	TitleLoginFailed  = "Login failed"
	TitleUnauthorized = "Unauthorized"
	TitleConflict     = "Conflict"
	TitleInternal     = "Internal server error"
)

// Error is the discriminated error type returned by session and user operations.
type Error struct {
	Kind     Kind
	Status   int
	Title    string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Title + ": " + e.Err.Error()
	}
	return e.Title
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input with field-level messages.
func Validation(messages ...string) *Error {
	return &Error{
		Kind:     KindValidation,
		Status:   http.StatusBadRequest,
		Title:    TitleBadRequest,
		Messages: messages,
	}
}

// Authentication reports a rejected credential or a missing session.
func Authentication(title string, messages ...string) *Error {
	return &Error{
		Kind:     KindAuthentication,
		Status:   http.StatusUnauthorized,
		Title:    title,
		Messages: messages,
	}
}

// Conflict reports a write that collides with existing state.
func Conflict(messages ...string) *Error {
	return &Error{
		Kind:     KindConflict,
		Status:   http.StatusConflict,
		Title:    TitleConflict,
		Messages: messages,
	}
}

// Internal wraps an unexpected collaborator failure.
func Internal(err error) *Error {
	return &Error{
		Kind:     KindInternal,
		Status:   http.StatusInternalServerError,
		Title:    TitleInternal,
		Messages: []string{"Something went wrong. Please try again later."},
		Err:      err,
	}
}

// As returns the variant carried by err, or an Internal variant wrapping it.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Body is the JSON shape clients receive for every error.
type Body struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (e *Error) Body() Body {
	errs := e.Messages
	if errs == nil {
		errs = []string{}
	}
	return Body{
		Title:   e.Title,
		Message: e.Title,
		Errors:  errs,
	}
}

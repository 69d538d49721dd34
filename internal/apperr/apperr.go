// Package apperr defines the typed error taxonomy shared by every
// component. Components return *Error (or wrap one); the request boundary
// in internal/httpapi maps Code to an HTTP status and a JSON body.
package apperr

import (
	"errors"
	"fmt"
)

// Code is one of the taxons from the error-handling design.
type Code string

const (
	Validation         Code = "validation"
	Unauthenticated     Code = "unauthenticated"
	Forbidden          Code = "forbidden"
	NotFound           Code = "not_found"
	Conflict           Code = "conflict"
	PreconditionFailed Code = "precondition_failed"
	RateLimited        Code = "rate_limited"
	Unavailable        Code = "unavailable"
	Internal           Code = "internal"
)

// Error is the typed error every component should return for a handled
// failure. Fields carries structured detail (e.g. the claimants list on a
// claim conflict) that the request boundary copies verbatim into the
// response body.
type Error struct {
	Code   Code
	Detail string
	Fields map[string]any
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.cause }

func new(code Code, detail string, cause error) *Error {
	return &Error{Code: code, Detail: detail, cause: cause}
}

func Newf(code Code, format string, args ...any) *Error {
	return new(code, fmt.Sprintf(format, args...), nil)
}

func Wrap(code Code, cause error, detail string) *Error {
	return new(code, detail, cause)
}

func ValidationError(format string, args ...any) *Error { return Newf(Validation, format, args...) }
func Unauthenticatedf(format string, args ...any) *Error { return Newf(Unauthenticated, format, args...) }
func Forbiddenf(format string, args ...any) *Error       { return Newf(Forbidden, format, args...) }
func NotFoundf(format string, args ...any) *Error        { return Newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error        { return Newf(Conflict, format, args...) }
func PreconditionFailedf(format string, args ...any) *Error {
	return Newf(PreconditionFailed, format, args...)
}
func Unavailablef(format string, args ...any) *Error { return Newf(Unavailable, format, args...) }
func Internalf(cause error, format string, args ...any) *Error {
	return Wrap(Internal, cause, fmt.Sprintf(format, args...))
}

// WithFields attaches structured detail, e.g. the blocking claimants list.
func (e *Error) WithFields(f map[string]any) *Error {
	e.Fields = f
	return e
}

// As extracts the *Error from err, if any exists in its chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the taxon for err, defaulting to Internal for untyped
// errors so the request boundary never leaks a bare 500 without a code.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return Internal
}

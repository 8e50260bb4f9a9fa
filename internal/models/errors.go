package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict") // optimistic lock / version mismatch
	ErrInvalidArgument = errors.New("invalid arguments")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUploadFailed    = errors.New("upload failed")
	ErrNotImplemented  = errors.New("not implemented")
)

// Error carries one of the sentinel codes above together with a message that
// is safe to show to the caller. The underlying cause, if any, stays in Err.
type Error struct {
	Code    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is the sentinel code of e.
func (e *Error) Is(target error) bool {
	return e.Code == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrInvalidArgument, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: ErrNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: ErrForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: ErrConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: ErrUnauthorized, Message: msg}
}

func UploadFailed(msg string, err error) *Error {
	return &Error{Code: ErrUploadFailed, Message: msg, Err: err}
}

func NotImplemented(msg string) *Error {
	return &Error{Code: ErrNotImplemented, Message: msg}
}

// MessageOf returns the caller-facing message of err, or fallback when err
// does not carry one.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

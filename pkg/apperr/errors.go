// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field  string
	Msg    string
	Fields map[string]string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return "validation failed: " + e.Msg
	default:
		return "validation failed"
	}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError rejects an operation the current record state does not allow.
type InvalidStateError struct {
	Msg string
}

func (e InvalidStateError) Error() string { return e.Msg }

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
}

// QuoteNotSentError means the quote email was refused; nothing was written.
type QuoteNotSentError struct {
	Err error
}

func (e QuoteNotSentError) Error() string {
	return fmt.Sprintf("quote not sent: %v", e.Err)
}

func (e QuoteNotSentError) Unwrap() error { return e.Err }

// PartialFailureError means a side effect that cannot be rolled back already happened.
type PartialFailureError struct {
	Msg string
	Err error
}

func (e PartialFailureError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e PartialFailureError) Unwrap() error { return e.Err }

// UnavailableError wraps store and timeout failures the caller may retry.
type UnavailableError struct {
	Op  string
	Err error
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e UnavailableError) Unwrap() error { return e.Err }

func Validation(field, msg string) error {
	return ValidationError{Field: field, Msg: msg}
}

func NotFound(resource, id string) error {
	return NotFoundError{Resource: resource, ID: id}
}

func InvalidState(format string, args ...any) error {
	return InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

func Unavailable(op string, err error) error {
	return UnavailableError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsQuoteNotSent(err error) bool {
	var target QuoteNotSentError
	return errors.As(err, &target)
}

func IsPartialFailure(err error) bool {
	var target PartialFailureError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

// UnauthorizedError rejects bad admin credentials.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string { return e.Msg }

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

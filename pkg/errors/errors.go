package errors

import (
	"errors"
	"fmt"
)

// Code classifies an application error.
type Code int

const (
	CodeAbsent Code = iota + 1000
	CodeAlreadyExists
	CodeInvalidFormat
	CodeMismatch
	CodeExpired
	CodeUsed
	CodePrecondition
	CodeIllegalTransition
	CodeUnauthorized
	CodeForbidden
	CodeInternal
)

// AppError is a field-scoped application error. Field names the
// request field the error applies to, empty when the error is not
// tied to a single field.
type AppError struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so callers can compare against constructor
// results without caring about field or message.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

func Absent(field string) *AppError {
	return &AppError{Code: CodeAbsent, Field: field, Message: fmt.Sprintf("%s does not exist", field)}
}

func AlreadyExists(field string) *AppError {
	return &AppError{Code: CodeAlreadyExists, Field: field, Message: fmt.Sprintf("%s already exists", field)}
}

func InvalidFormat(field, message string) *AppError {
	return &AppError{Code: CodeInvalidFormat, Field: field, Message: message}
}

func Mismatch(field string) *AppError {
	return &AppError{Code: CodeMismatch, Field: field, Message: fmt.Sprintf("%s does not match", field)}
}

func Expired(field string) *AppError {
	return &AppError{Code: CodeExpired, Field: field, Message: fmt.Sprintf("%s has expired", field)}
}

func Used(field string) *AppError {
	return &AppError{Code: CodeUsed, Field: field, Message: fmt.Sprintf("%s is already used", field)}
}

func Precondition(field, message string) *AppError {
	return &AppError{Code: CodePrecondition, Field: field, Message: message}
}

func IllegalTransition(from, to string) *AppError {
	return &AppError{
		Code:    CodeIllegalTransition,
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Err: err}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf returns the application code of err, or CodeInternal when
// err is not an AppError.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

package users

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code placed in the response envelope
type ErrorCode string

const (
	CodeUsernameAlreadyTaken ErrorCode = "UsernameAlreadyTaken"
	CodeEmailAlreadyInUse    ErrorCode = "EmailAlreadyInUse"
	CodeValidationError      ErrorCode = "ValidationError"
	CodeUserNotFound         ErrorCode = "UserNotFound"
	CodeServerError          ErrorCode = "ServerError"
)

// ErrNotFound is returned by stores when no user matches a lookup
var ErrNotFound = errors.New("user not found")

// ConflictError is returned by stores when a write hits a unique constraint
type ConflictError struct {
	Field string // "email" or "username"
	Cause error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// Error represents a failed user directory operation
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewUsernameTakenError(username string) *Error {
	return &Error{
		Code:    CodeUsernameAlreadyTaken,
		Message: fmt.Sprintf("username %q is already taken", username),
	}
}

func NewEmailInUseError(email string) *Error {
	return &Error{
		Code:    CodeEmailAlreadyInUse,
		Message: fmt.Sprintf("email %q is already in use", email),
	}
}

func NewValidationError(field, message string) *Error {
	return &Error{
		Code:    CodeValidationError,
		Message: fmt.Sprintf("%s %s", field, message),
	}
}

func NewUserNotFoundError(key string) *Error {
	return &Error{
		Code:    CodeUserNotFound,
		Message: fmt.Sprintf("no user matches %s", key),
	}
}

func NewServerError(operation string, cause error) *Error {
	return &Error{
		Code:    CodeServerError,
		Message: operation + " failed",
		Cause:   cause,
	}
}

// CodeOf extracts the error code from err; anything that is not an *Error is
// a ServerError.
func CodeOf(err error) ErrorCode {
	var userErr *Error
	if errors.As(err, &userErr) {
		return userErr.Code
	}
	return CodeServerError
}

// conflictToError turns a store-level conflict into the matching user error
func conflictToError(conflict *ConflictError, req *UserInput) *Error {
	if conflict.Field == "username" {
		return NewUsernameTakenError(req.Username)
	}
	return NewEmailInUseError(req.Email)
}

package main

import (
	"github.com/pkg/errors"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateUsername = errors.New("username already registered")
)

// ValidationError is a user-facing message shown on a re-rendered form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// validationMessage reports the message of err if it is a ValidationError.
func validationMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

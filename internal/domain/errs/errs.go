// Package errs defines the error kinds shared by every bounded context.
// Concrete errors carry a caller-facing message and unwrap to one kind, so
// services and transport can branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrConflict              = errors.New("conflict")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInsufficientQuantity  = errors.New("insufficient quantity")
	ErrIncompatibleItems     = errors.New("incompatible items")
	ErrOrderAlreadyCompleted = errors.New("order already completed")

	// ErrConcurrentUpdate reports a lost optimistic-concurrency race.
	ErrConcurrentUpdate = errors.New("concurrent update")
	// ErrUnavailable reports an external collaborator that refused the call.
	ErrUnavailable = errors.New("unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &kindError{kind: kind, msg: msg}
}

func Validation(format string, args ...any) error {
	return New(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return New(ErrNotFound, format, args...)
}

func NotAuthorized(format string, args ...any) error {
	return New(ErrNotAuthorized, format, args...)
}

func Conflict(format string, args ...any) error {
	return New(ErrConflict, format, args...)
}

func InvalidCredentials(format string, args ...any) error {
	return New(ErrInvalidCredentials, format, args...)
}

func InvalidToken(format string, args ...any) error {
	return New(ErrInvalidToken, format, args...)
}

var kinds = []struct {
	kind error
	code string
}{
	{ErrValidation, "VALIDATION"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrNotAuthorized, "NOT_AUTHORIZED"},
	{ErrConflict, "CONFLICT"},
	{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{ErrInsufficientQuantity, "INSUFFICIENT_QUANTITY"},
	{ErrIncompatibleItems, "INCOMPATIBLE_ITEMS"},
	{ErrOrderAlreadyCompleted, "ORDER_ALREADY_COMPLETED"},
	{ErrConcurrentUpdate, "CONCURRENT_UPDATE"},
	{ErrUnavailable, "UNAVAILABLE"},
}

// Code returns a stable UPPER_SNAKE label for err, suitable for logs and span status.
func Code(err error) string {
	if err == nil {
		return "OK"
	}
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.code
		}
	}
	return "INTERNAL"
}

// IsKind reports whether err matches any kind declared here.
func IsKind(err error) bool {
	return err != nil && Code(err) != "INTERNAL"
}

// Package apperrors defines the error kinds every service operation can fail
// with. Each kind has a stable machine-readable name and an HTTP status.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindDuplicate           Kind = "duplicate_conflict"
	KindForbidden           Kind = "forbidden"
	KindInvalidTransition   Kind = "invalid_transition"
	KindValidation          Kind = "validation_error"
	KindInvalidRecipient    Kind = "invalid_recipient"
	KindInvalidSplit        Kind = "invalid_split"
	KindCategoryNotVisible  Kind = "category_not_visible"
	KindUnauthorized        Kind = "unauthorized"
	KindReferentialConflict Kind = "referential_conflict"
	KindInternal            Kind = "internal_error"
)

// Error is the typed failure returned by services. Message is safe to show to
// the caller; Err, when set, is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrDuplicate           = &Error{Kind: KindDuplicate}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrInvalidRecipient    = &Error{Kind: KindInvalidRecipient}
	ErrInvalidSplit        = &Error{Kind: KindInvalidSplit}
	ErrCategoryNotVisible  = &Error{Kind: KindCategoryNotVisible}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrReferentialConflict = &Error{Kind: KindReferentialConflict}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Duplicate(message string) *Error {
	return New(KindDuplicate, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate, KindInvalidTransition, KindReferentialConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindInvalidRecipient, KindInvalidSplit, KindCategoryNotVisible:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

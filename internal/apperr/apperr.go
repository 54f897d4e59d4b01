// Package apperr defines the error kinds surfaced to callers. Domain packages
// declare their sentinels with these constructors and transports map the kind
// to a response.
package apperr

import "errors"

type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindStateConflict      Kind = "state_conflict"
	KindDeadlineExceeded   Kind = "deadline_exceeded"
	KindExpired            Kind = "expired"
	KindInsufficientTokens Kind = "insufficient_tokens"
	KindAlreadyPaused      Kind = "already_paused"
	KindUnprocessable      Kind = "unprocessable"
	KindConfiguration      Kind = "configuration"
	KindInternal           Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

// StateConflict is a conflict with the current state of one of the caller's
// own records, such as a second order for a date or cancelling a past order.
func StateConflict(code, message string) *Error {
	return New(KindStateConflict, code, message)
}

func DeadlineExceeded(code, message string) *Error {
	return New(KindDeadlineExceeded, code, message)
}

func Expired(code, message string) *Error {
	return New(KindExpired, code, message)
}

func InsufficientTokens(code, message string) *Error {
	return New(KindInsufficientTokens, code, message)
}

func AlreadyPaused(code, message string) *Error {
	return New(KindAlreadyPaused, code, message)
}

// Unprocessable is a well-formed request that the current state of the
// caller's account does not permit.
func Unprocessable(code, message string) *Error {
	return New(KindUnprocessable, code, message)
}

func Configuration(code, message string) *Error {
	return New(KindConfiguration, code, message)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsCallerFault reports whether err is the caller's doing rather than ours.
func IsCallerFault(err error) bool {
	switch KindOf(err) {
	case KindInternal, KindConfiguration:
		return false
	default:
		return true
	}
}

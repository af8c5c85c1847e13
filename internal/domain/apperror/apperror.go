// Package apperror defines the failure kinds the account core reports.
// Components return *Error values; the HTTP boundary maps Kind to a status
// code and never inspects Message for control flow.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindNotFound
	KindAlreadyVerified
	KindBadRequest
	KindUnprocessableImage
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindAlreadyVerified:
		return "already_verified"
	case KindBadRequest:
		return "bad_request"
	case KindUnprocessableImage:
		return "unprocessable_image"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-safe message and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err,
// apperror.Unauthorized("")) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Conflict(msg string) *Error           { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error       { return New(KindUnauthorized, msg) }
func NotFound(msg string) *Error           { return New(KindNotFound, msg) }
func AlreadyVerified(msg string) *Error    { return New(KindAlreadyVerified, msg) }
func BadRequest(msg string) *Error         { return New(KindBadRequest, msg) }
func UnprocessableImage(msg string) *Error { return New(KindUnprocessableImage, msg) }

// Internal wraps an infrastructure fault. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for anything that is not
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

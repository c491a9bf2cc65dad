// Package apperror classifies failures so the HTTP layer can pick a status
// without inspecting error strings.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindUnprocessable
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnprocessable:
		return "unprocessable"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error carries a Kind and an i18n message key for the caller-facing message.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Key)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(key string) *Error {
	return &Error{Kind: KindNotFound, Key: key}
}

func Unauthorized(key string) *Error {
	return &Error{Kind: KindUnauthorized, Key: key}
}

func Unprocessable(key string, err error) *Error {
	return &Error{Kind: KindUnprocessable, Key: key, Err: err}
}

func Invalid(key string, err error) *Error {
	return &Error{Kind: KindInvalid, Key: key, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Key: "internal.error", Err: err}
}

// KindOf reports KindInternal for errors that carry no classification.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

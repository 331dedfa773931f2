// Package apperr classifies service failures so the HTTP layer can turn them
// into a result shape instead of leaking raw errors.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	KindAuthExpired       Kind = "auth_expired"
	KindExternalService   Kind = "external_service"
	KindPersistence       Kind = "persistence"
	KindNotFound          Kind = "not_found"
	KindInvalid           Kind = "invalid"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInternal          Kind = "internal"
)

// Error carries a Kind next to a human readable message and the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.QuotaExceeded) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	QuotaExceeded     = &Error{Kind: KindQuotaExceeded}
	RateLimitExceeded = &Error{Kind: KindRateLimitExceeded}
	AuthExpired       = &Error{Kind: KindAuthExpired}
	ExternalService   = &Error{Kind: KindExternalService}
	Persistence       = &Error{Kind: KindPersistence}
	NotFound          = &Error{Kind: KindNotFound}
	Invalid           = &Error{Kind: KindInvalid}
	Conflict          = &Error{Kind: KindConflict}
	Forbidden         = &Error{Kind: KindForbidden}
	Unauthenticated   = &Error{Kind: KindUnauthenticated}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the message of the first *Error in the chain.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

// Package apperr defines the error kinds the core reports to its callers.
// Handlers map a Kind to a response status; only Internal errors are
// unexpected and get logged as failures.
package apperr

import (
	"errors"
	"strings"
)

type Kind int

const (
	Internal Kind = iota
	NotAuthenticated
	PermissionDenied
	NotFound
	Validation
	Integrity
)

func (k Kind) String() string {
	switch k {
	case NotAuthenticated:
		return "not_authenticated"
	case PermissionDenied:
		return "permission_denied"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Integrity:
		return "integrity"
	default:
		return "internal"
	}
}

// Error is a user-facing failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Code    string
	Entity  string
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Unauthenticated() *Error {
	return &Error{Kind: NotAuthenticated, Code: "not_authenticated", Message: "Authentication required"}
}

// NotFoundf reports a missing or invisible entity, e.g. NotFoundf("team")
// gives "Team not found".
func NotFoundf(entity string) *Error {
	msg := entity + " not found"
	if entity != "" {
		msg = strings.ToUpper(entity[:1]) + msg[1:]
	}
	return &Error{Kind: NotFound, Code: "not_found", Entity: entity, Message: msg}
}

func Denied(code, message string) *Error {
	return &Error{Kind: PermissionDenied, Code: code, Message: message}
}

func Invalid(field, message string) *Error {
	return &Error{Kind: Validation, Code: "invalid", Field: field, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: Integrity, Code: code, Message: message}
}

// KindOf returns the kind of err, or Internal for errors outside this
// package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// CodeOf returns the machine readable code of err, or "" for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

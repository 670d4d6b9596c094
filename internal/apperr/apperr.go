// Package apperr classifies storefront failures so callers and the local
// HTTP surface can react to the kind of failure rather than its text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a failure.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindStock      Kind = "stock_error"
	KindNetwork    Kind = "network_error"
	KindNoDiscount Kind = "no_discount_applicable"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal_error"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrStock      = &Error{Kind: KindStock}
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrNoDiscount = &Error{Kind: KindNoDiscount}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

// Error is a classified failure. Status is the remote HTTP status for
// network failures (0 means no response was received).
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero Status must also match the status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Stock(msg string) error {
	return &Error{Kind: KindStock, Message: msg}
}

func NoDiscount(msg string) error {
	return &Error{Kind: KindNoDiscount, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Network wraps a transport or backend failure. A known status gets the
// customer-facing message for that status when msg is empty.
func Network(status int, msg string, err error) error {
	if msg == "" {
		msg = statusMessage(status)
	}
	return &Error{Kind: KindNetwork, Status: status, Message: msg, Err: err}
}

func statusMessage(status int) string {
	switch status {
	case 0:
		return "backend unreachable"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "unauthorized access"
	case http.StatusNotFound:
		return "not found"
	}
	return fmt.Sprintf("backend returned status %d", status)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the remote status carried by a network error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsNetwork reports whether err is a transport or backend failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// HTTPStatus maps err to the status code the local HTTP surface answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindStock, KindNoDiscount:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork:
		switch StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return StatusOf(err)
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Package result is the envelope every local endpoint answers with.
package result

import (
	"encoding/json"
	"net/http"

	"ramyeon-storefront/internal/apperr"
)

// Result carries either Data or an Error. Authoritative is false when the
// data came from a local fallback instead of the backend.
type Result[T any] struct {
	Success       bool        `json:"success"`
	Data          T           `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
	Kind          apperr.Kind `json:"kind,omitempty"`
	Authoritative bool        `json:"authoritative"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, Authoritative: true}
}

// Fallback marks data produced without a backend answer.
func Fallback[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, Authoritative: false}
}

func Of[T any](data T, authoritative bool) Result[T] {
	return Result[T]{Success: true, Data: data, Authoritative: authoritative}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: err.Error(), Kind: apperr.KindOf(err)}
}

// Write encodes r with status.
func Write[T any](w http.ResponseWriter, status int, r Result[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(r)
}

// WriteError encodes err with the status derived from its kind.
func WriteError(w http.ResponseWriter, err error) {
	Write(w, apperr.HTTPStatus(err), Fail[any](err))
}

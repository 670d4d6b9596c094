package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnexpectedShape is returned when a response holds none of the
// expected layouts.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// DecodeList decodes a list that is either the whole body or found at one
// of the dotted paths, tried in order (e.g. "data", "data.results").
func DecodeList[T any](raw []byte, paths ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if isArray(raw) {
		var out []T
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	for _, p := range paths {
		node, ok := lookup(raw, p)
		if !ok || !isArray(node) {
			continue
		}
		var out []T
		err := json.Unmarshal(node, &out)
		return out, err
	}
	return nil, ErrUnexpectedShape
}

// DecodeObject decodes the first object found at one of paths, or the
// whole body when none match.
func DecodeObject[T any](raw []byte, paths ...string) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	for _, p := range paths {
		node, ok := lookup(raw, p)
		if !ok || !isObject(node) {
			continue
		}
		err := json.Unmarshal(node, &out)
		return out, err
	}
	if !isObject(raw) {
		return out, ErrUnexpectedShape
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}

func lookup(raw []byte, path string) (json.RawMessage, bool) {
	node := json.RawMessage(raw)
	for _, key := range strings.Split(path, ".") {
		if !isObject(node) {
			return nil, false
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(node, &m); err != nil {
			return nil, false
		}
		next, ok := m[key]
		if !ok {
			return nil, false
		}
		node = bytes.TrimSpace(next)
	}
	return node, true
}

func isArray(b []byte) bool  { return len(b) > 0 && b[0] == '[' }
func isObject(b []byte) bool { return len(b) > 0 && b[0] == '{' }

// Failed reports whether raw is a {"success": false, ...} reply and
// returns its message. Some endpoints answer failures with a 2xx status.
func Failed(raw []byte) (string, bool) {
	node, ok := lookup(bytes.TrimSpace(raw), "success")
	if !ok || string(node) != "false" {
		return "", false
	}
	return errorMessage(raw), true
}

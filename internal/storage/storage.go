// Package storage persists small JSON documents (cart, session tokens,
// mirrored orders) under string keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key/value store. Get returns ErrNotFound for a key
// that was never set or has been deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const (
	CartKey         = "ramyeon_cart"
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	SessionKey      = "ramyeon_user_session"
)

// OrdersKey is where a customer's order list is mirrored.
func OrdersKey(customerID string) string {
	return "ramyeon_orders_" + customerID
}

// GetJSON decodes the value at key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

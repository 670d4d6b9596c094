package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"ramyeon-storefront/internal/storage"
)

// Repository persists the cart under a single storage key.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context) error
}

type repository struct {
	store storage.Store
	key   string
}

func NewRepository(store storage.Store) Repository {
	return &repository{store: store, key: storage.CartKey}
}

// Load accepts both the snapshot form and the bare item array older
// clients stored. A missing key is an empty cart; anything unparsable is
// ErrCorruptCart.
func (r *repository) Load(ctx context.Context) (Snapshot, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Snapshot{}, nil
	}

	var snap Snapshot
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &snap.Items); err != nil {
			return Snapshot{}, errors.Join(ErrCorruptCart, err)
		}
	case '{':
		if err := json.Unmarshal(raw, &snap); err != nil {
			return Snapshot{}, errors.Join(ErrCorruptCart, err)
		}
	default:
		return Snapshot{}, ErrCorruptCart
	}
	return snap, nil
}

// Save stores snap, or removes the key when the cart is empty.
func (r *repository) Save(ctx context.Context, snap Snapshot) error {
	if len(snap.Items) == 0 && len(snap.AppliedPromotions) == 0 {
		return r.Delete(ctx)
	}
	return storage.SetJSON(ctx, r.store, r.key, snap)
}

func (r *repository) Delete(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("MissingKey", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetGet", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, CartKey, []byte(`{"items":[]}`)))
		v, err := s.Get(ctx, CartKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[]}`, string(v))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, AccessTokenKey, []byte("a")))
		require.NoError(t, s.Set(ctx, AccessTokenKey, []byte("b")))
		v, err := s.Get(ctx, AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "b", string(v))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, SessionKey, []byte("x")))
		require.NoError(t, s.Delete(ctx, SessionKey))
		_, err := s.Get(ctx, SessionKey)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, s.Delete(ctx, SessionKey), "deleting a missing key is not an error")
	})

	t.Run("JSONHelpers", func(t *testing.T) {
		type doc struct {
			Name string `json:"name"`
		}
		require.NoError(t, SetJSON(ctx, s, OrdersKey("c1"), doc{Name: "ramyeon"}))

		var got doc
		require.NoError(t, GetJSON(ctx, s, OrdersKey("c1"), &got))
		assert.Equal(t, "ramyeon", got.Name)

		require.NoError(t, s.Set(ctx, "broken", []byte("{not json")))
		assert.Error(t, GetJSON(ctx, s, "broken", &got))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, s)
}

func TestFileStore_Keys(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, OrdersKey("c/1"), []byte("[]")))
	require.NoError(t, s.Set(ctx, CartKey, []byte("{}")))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ramyeon_cart", "ramyeon_orders_c/1"}, keys)

	require.NoError(t, s.Delete(ctx, CartKey))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ramyeon_orders_c/1"}, keys)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[0] = 'z'

	v, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestOrdersKey(t *testing.T) {
	assert.Equal(t, "ramyeon_orders_42", OrdersKey("42"))
}

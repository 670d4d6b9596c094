package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	t.Run("MatchesKind", func(t *testing.T) {
		err := Stock("only 2 left")
		assert.True(t, errors.Is(err, ErrStock))
		assert.False(t, errors.Is(err, ErrValidation))
	})

	t.Run("MatchesThroughWrapping", func(t *testing.T) {
		err := fmt.Errorf("add item: %w", Validation("quantity must be at least 1"))
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("MatchesStatus", func(t *testing.T) {
		err := Network(http.StatusNotFound, "", nil)
		assert.True(t, errors.Is(err, ErrNetwork))
		assert.True(t, errors.Is(err, &Error{Kind: KindNetwork, Status: http.StatusNotFound}))
		assert.False(t, errors.Is(err, &Error{Kind: KindNetwork, Status: http.StatusForbidden}))
	})
}

func TestNetworkMessages(t *testing.T) {
	assert.Equal(t, "authentication required", Network(http.StatusUnauthorized, "", nil).Error())
	assert.Equal(t, "unauthorized access", Network(http.StatusForbidden, "", nil).Error())
	assert.Equal(t, "not found", Network(http.StatusNotFound, "", nil).Error())
	assert.Equal(t, "backend returned status 500", Network(http.StatusInternalServerError, "", nil).Error())

	cause := errors.New("dial tcp: refused")
	err := Network(0, "", cause)
	assert.Equal(t, "backend unreachable: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNetwork(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", Validation("bad"), http.StatusBadRequest},
		{"Stock", Stock("none"), http.StatusUnprocessableEntity},
		{"NoDiscount", NoDiscount("zero"), http.StatusUnprocessableEntity},
		{"NotFound", NotFound("missing"), http.StatusNotFound},
		{"NetworkUnauthorized", Network(http.StatusUnauthorized, "", nil), http.StatusUnauthorized},
		{"NetworkServerError", Network(http.StatusInternalServerError, "", nil), http.StatusBadGateway},
		{"Unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

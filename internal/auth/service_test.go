package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/httpclient"
	"ramyeon-storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(TokenPair), args.Error(1)
}

func (m *MockRepository) Register(ctx context.Context, input RegisterInput) (TokenPair, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(TokenPair), args.Error(1)
}

func (m *MockRepository) Profile(ctx context.Context) (Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).(Customer), args.Error(1)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		session := NewSession(storage.NewMemoryStore(), "")
		svc := NewService(repo, session)

		creds := Credentials{Email: "jo@example.com", Password: "secret"}
		repo.On("Login", ctx, creds).Return(TokenPair{
			AccessToken:  "acc",
			RefreshToken: "ref",
			Customer:     &Customer{ID: "c1", LoyaltyPoints: 120},
		}, nil)

		pair, err := svc.Login(ctx, Credentials{Email: "  jo@example.com ", Password: "secret"})
		assert.NoError(t, err)
		assert.Equal(t, "acc", pair.AccessToken)
		assert.Equal(t, "acc", session.AccessToken(ctx))

		c, ok := session.Customer(ctx)
		assert.True(t, ok)
		assert.Equal(t, 120, c.LoyaltyPoints)
		repo.AssertExpectations(t)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		svc := NewService(new(MockRepository), NewSession(storage.NewMemoryStore(), ""))
		_, err := svc.Login(ctx, Credentials{Email: "jo@example.com"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("BackendRejects", func(t *testing.T) {
		repo := new(MockRepository)
		session := NewSession(storage.NewMemoryStore(), "")
		svc := NewService(repo, session)

		repo.On("Login", ctx, mock.Anything).Return(TokenPair{}, apperr.Network(http.StatusUnauthorized, "Invalid credentials", nil))

		_, err := svc.Login(ctx, Credentials{Email: "jo@example.com", Password: "bad"})
		assert.Error(t, err)
		assert.Empty(t, session.AccessToken(ctx))
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	session := NewSession(storage.NewMemoryStore(), "")
	svc := NewService(repo, session)

	input := RegisterInput{Email: "new@example.com", Password: "pw", FirstName: "Jo"}
	repo.On("Register", ctx, input).Return(TokenPair{AccessToken: "acc"}, nil)

	_, err := svc.Register(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, "acc", session.AccessToken(ctx))
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		session := NewSession(storage.NewMemoryStore(), "")
		require.NoError(t, session.SaveTokens(ctx, TokenPair{AccessToken: "acc"}))
		svc := NewService(repo, session)

		repo.On("Profile", ctx).Return(Customer{ID: "c1", LoyaltyPoints: 64}, nil)

		c, err := svc.Profile(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 64, c.LoyaltyPoints)

		cached, ok := session.Customer(ctx)
		assert.True(t, ok)
		assert.Equal(t, "c1", cached.ID)
	})

	t.Run("NotLoggedIn", func(t *testing.T) {
		svc := NewService(new(MockRepository), NewSession(storage.NewMemoryStore(), "svc"))
		_, err := svc.Profile(ctx)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("BackendError", func(t *testing.T) {
		repo := new(MockRepository)
		session := NewSession(storage.NewMemoryStore(), "")
		require.NoError(t, session.SaveTokens(ctx, TokenPair{AccessToken: "acc"}))
		repo.On("Profile", ctx).Return(Customer{}, errors.New("boom"))

		_, err := NewService(repo, session).Profile(ctx)
		assert.Error(t, err)
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	session := NewSession(storage.NewMemoryStore(), "")
	require.NoError(t, session.SaveTokens(ctx, TokenPair{AccessToken: "acc", RefreshToken: "ref"}))

	assert.NoError(t, NewService(new(MockRepository), session).Logout(ctx))
	assert.Empty(t, session.AccessToken(ctx))
}

func TestRepository_Profile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Bare", `{"id":"c1","email":"jo@example.com","loyalty_points":88}`},
		{"NestedCustomer", `{"customer":{"_id":"c1","email":"jo@example.com","loyalty_points":88}}`},
		{"NestedData", `{"success":true,"data":{"id":"c1","email":"jo@example.com","loyalty_points":88}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/customer/profile/", r.URL.Path)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewRepository(httpclient.New(srv.URL)).Profile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "c1", c.ID)
			assert.Equal(t, 88, c.LoyaltyPoints)
		})
	}
}

func TestRepository_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/customer/login/", r.URL.Path)
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref"}`))
	}))
	defer srv.Close()

	pair, err := NewRepository(httpclient.New(srv.URL)).Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "acc", pair.AccessToken)
	assert.Equal(t, "ref", pair.RefreshToken)
}

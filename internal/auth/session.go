package auth

import (
	"context"
	"errors"

	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/storage"

	"go.uber.org/zap"
)

// Session keeps the customer's tokens and cached profile in storage. It is
// the bearer TokenSource for backend calls: the customer's access token
// when logged in, otherwise the configured service token.
type Session struct {
	store        storage.Store
	serviceToken string
}

func NewSession(store storage.Store, serviceToken string) *Session {
	return &Session{store: store, serviceToken: serviceToken}
}

// Token prefers a token attached to ctx by the local HTTP surface.
func (s *Session) Token(ctx context.Context) string {
	if tok := TokenFrom(ctx); tok != "" {
		return tok
	}
	if tok := s.AccessToken(ctx); tok != "" {
		return tok
	}
	return s.serviceToken
}

// AccessToken returns the customer's own token, or "" when logged out.
func (s *Session) AccessToken(ctx context.Context) string {
	raw, err := s.store.Get(ctx, storage.AccessTokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.FromCtx(ctx).Warn("failed to read access token", zap.Error(err))
		}
		return ""
	}
	return string(raw)
}

func (s *Session) SaveTokens(ctx context.Context, pair TokenPair) error {
	if pair.AccessToken != "" {
		if err := s.store.Set(ctx, storage.AccessTokenKey, []byte(pair.AccessToken)); err != nil {
			return err
		}
	}
	if pair.RefreshToken != "" {
		if err := s.store.Set(ctx, storage.RefreshTokenKey, []byte(pair.RefreshToken)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) SaveCustomer(ctx context.Context, c Customer) error {
	return storage.SetJSON(ctx, s.store, storage.SessionKey, c)
}

// Customer returns the cached profile.
func (s *Session) Customer(ctx context.Context) (Customer, bool) {
	var c Customer
	if err := storage.GetJSON(ctx, s.store, storage.SessionKey, &c); err != nil {
		return Customer{}, false
	}
	return c, true
}

// CustomerID resolves the customer from ctx, the cached profile, then the
// stored access token's claims.
func (s *Session) CustomerID(ctx context.Context) (string, error) {
	if id, ok := CustomerIDFrom(ctx); ok {
		return id, nil
	}
	if c, ok := s.Customer(ctx); ok && c.ID != "" {
		return c.ID, nil
	}
	tok := s.AccessToken(ctx)
	if tok == "" {
		return "", ErrNotAuthenticated
	}
	return CustomerIDFromToken(tok)
}

// Clear removes tokens and the cached profile.
func (s *Session) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{storage.AccessTokenKey, storage.RefreshTokenKey, storage.SessionKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

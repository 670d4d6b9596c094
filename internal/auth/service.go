package auth

import (
	"context"
	"strings"

	"ramyeon-storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, creds Credentials) (TokenPair, error)
	Register(ctx context.Context, input RegisterInput) (TokenPair, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (Customer, error)
}

type service struct {
	repo    Repository
	session *Session
}

func NewService(repo Repository, session *Session) Service {
	return &service{repo: repo, session: session}
}

func (s *service) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	log := logger.Layer(ctx, "service", "Login")

	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return TokenPair{}, ErrMissingCredentials
	}

	pair, err := s.repo.Login(ctx, creds)
	if err != nil {
		log.Error("failed to login", zap.Error(err))
		return TokenPair{}, err
	}
	if err := s.persist(ctx, pair); err != nil {
		log.Error("failed to persist session", zap.Error(err))
		return TokenPair{}, err
	}

	log.Info("Login success")
	return pair, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (TokenPair, error) {
	log := logger.Layer(ctx, "service", "Register")

	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return TokenPair{}, ErrMissingCredentials
	}

	pair, err := s.repo.Register(ctx, input)
	if err != nil {
		log.Error("failed to register", zap.Error(err))
		return TokenPair{}, err
	}
	if err := s.persist(ctx, pair); err != nil {
		log.Error("failed to persist session", zap.Error(err))
		return TokenPair{}, err
	}

	log.Info("Register success")
	return pair, nil
}

func (s *service) persist(ctx context.Context, pair TokenPair) error {
	if err := s.session.SaveTokens(ctx, pair); err != nil {
		return err
	}
	if pair.Customer != nil {
		return s.session.SaveCustomer(ctx, *pair.Customer)
	}
	return nil
}

func (s *service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		logger.Layer(ctx, "service", "Logout").Error("failed to clear session", zap.Error(err))
		return err
	}
	return nil
}

// Profile fetches the customer from the backend and refreshes the cached copy.
func (s *service) Profile(ctx context.Context) (Customer, error) {
	log := logger.Layer(ctx, "service", "Profile")

	if s.session.AccessToken(ctx) == "" {
		return Customer{}, ErrNotAuthenticated
	}

	c, err := s.repo.Profile(ctx)
	if err != nil {
		log.Error("failed to fetch profile", zap.Error(err))
		return Customer{}, err
	}
	if err := s.session.SaveCustomer(ctx, c); err != nil {
		log.Warn("failed to cache profile", zap.Error(err))
	}

	log.Info("Profile success", zap.String("customer_id", c.ID), zap.Int("loyalty_points", c.LoyaltyPoints))
	return c, nil
}

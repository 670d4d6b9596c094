package auth

import (
	"context"
	"encoding/json"

	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	Login(ctx context.Context, creds Credentials) (TokenPair, error)
	Register(ctx context.Context, input RegisterInput) (TokenPair, error)
	Profile(ctx context.Context) (Customer, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func (r *repository) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	var pair TokenPair
	err := r.client.Post(ctx, "/auth/customer/login/", creds, &pair)
	return pair, err
}

func (r *repository) Register(ctx context.Context, input RegisterInput) (TokenPair, error) {
	var pair TokenPair
	err := r.client.Post(ctx, "/auth/customer/register/", input, &pair)
	return pair, err
}

func (r *repository) Profile(ctx context.Context) (Customer, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/auth/customer/profile/", nil, &raw); err != nil {
		return Customer{}, err
	}
	return decodeCustomer(raw)
}

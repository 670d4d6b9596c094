package promotion

import (
	"context"
	"encoding/json"
	"net/url"

	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	GetActive(ctx context.Context, query url.Values) ([]Promotion, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func (r *repository) GetActive(ctx context.Context, query url.Values) ([]Promotion, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/promotions/active/", query, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Promotion](raw, "promotions", "data.results", "data")
}

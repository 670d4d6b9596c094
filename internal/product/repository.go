package product

import (
	"context"
	"encoding/json"
	"net/url"

	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	List(ctx context.Context, query url.Values) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Search(ctx context.Context, q string) ([]Product, error)
	ValidateStock(ctx context.Context, items []StockItem) (stockReply, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, query url.Values) ([]Product, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/products/", query, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Product](raw, "data", "data.results", "results", "products")
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/products/"+url.PathEscape(id)+"/", nil, &raw); err != nil {
		return Product{}, err
	}
	return httpclient.DecodeObject[Product](raw, "data", "product")
}

func (r *repository) Search(ctx context.Context, q string) ([]Product, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/pos/search/", url.Values{"q": {q}}, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Product](raw, "data", "results", "products", "data.results")
}

func (r *repository) ValidateStock(ctx context.Context, items []StockItem) (stockReply, error) {
	var reply stockReply
	err := r.client.Post(ctx, "/pos/stock-validation/", map[string]any{"checkout_data": items}, &reply)
	return reply, err
}

package category

import (
	"context"
	"encoding/json"
	"net/url"

	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetSubcategories(ctx context.Context, categoryID string) ([]*Subcategory, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func (r *repository) GetCategories(ctx context.Context) ([]*Category, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/category/", nil, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*Category](raw, "data", "categories", "results")
}

func (r *repository) GetCategory(ctx context.Context, id string) (*Category, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/category/"+url.PathEscape(id)+"/", nil, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeObject[*Category](raw, "data", "category")
}

func (r *repository) GetSubcategories(ctx context.Context, categoryID string) ([]*Subcategory, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/category/"+url.PathEscape(categoryID)+"/subcategories/", nil, &raw); err != nil {
		return nil, err
	}
	subs, err := httpclient.DecodeList[*Subcategory](raw, "data", "subcategories", "results")
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if s.CategoryID == "" {
			s.CategoryID = categoryID
		}
	}
	return subs, nil
}

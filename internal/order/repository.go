package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	Create(ctx context.Context, payload CreatePayload) (Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Status(ctx context.Context, id string) (StatusInfo, error)
	UpdateStatus(ctx context.Context, id string, req UpdateRequest) (Order, error)
	Cancel(ctx context.Context, id, reason string) (Order, error)
	Search(ctx context.Context, q, customerID string) ([]Order, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func orderPath(id, suffix string) string {
	return "/online-orders/" + url.PathEscape(id) + "/" + suffix
}

func (r *repository) Create(ctx context.Context, payload CreatePayload) (Order, error) {
	var raw json.RawMessage
	if err := r.client.Post(ctx, "/online-orders/", payload, &raw); err != nil {
		return Order{}, err
	}
	return decodeOrder(raw, ErrCreateFailed)
}

// ListByCustomer returns the backend's bare array; enveloped replies are
// accepted too.
func (r *repository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var raw json.RawMessage
	if err := r.client.Get(ctx, "/online-orders/customer/"+url.PathEscape(customerID)+"/", q, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Order](raw, "results", "data.results", "data", "orders")
}

func (r *repository) Get(ctx context.Context, id string) (Order, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/sales/get/"+url.PathEscape(id)+"/", nil, &raw); err != nil {
		return Order{}, err
	}
	return decodeOrder(raw, ErrOrderNotFound)
}

func (r *repository) Status(ctx context.Context, id string) (StatusInfo, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/online/orders/"+url.PathEscape(id)+"/status/", nil, &raw); err != nil {
		return StatusInfo{}, statusError(err)
	}
	if msg, failed := httpclient.Failed(raw); failed {
		return StatusInfo{}, apperr.Network(http.StatusOK, firstNonEmpty(msg, ErrOrderNotFound.Error()), nil)
	}
	return httpclient.DecodeObject[StatusInfo](raw, "data")
}

func (r *repository) UpdateStatus(ctx context.Context, id string, req UpdateRequest) (Order, error) {
	var raw json.RawMessage
	if err := r.client.Post(ctx, orderPath(id, "status/"), req, &raw); err != nil {
		return Order{}, err
	}
	return decodeOrder(raw, ErrUpdateFailed)
}

func (r *repository) Cancel(ctx context.Context, id, reason string) (Order, error) {
	var raw json.RawMessage
	if err := r.client.Post(ctx, orderPath(id, "cancel/"), cancelPayload{Reason: reason}, &raw); err != nil {
		return Order{}, err
	}
	return decodeOrder(raw, ErrCancelFailed)
}

func (r *repository) Search(ctx context.Context, q, customerID string) ([]Order, error) {
	query := url.Values{}
	query.Set("q", q)
	if customerID != "" {
		query.Set("customer_id", customerID)
	}

	var raw json.RawMessage
	if err := r.client.Get(ctx, "/online-orders/search/", query, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Order](raw, "results", "data.results", "data")
}

// decodeOrder unwraps {success, data}. A success:false reply fails with
// the backend's message, or fallback when it has none.
func decodeOrder(raw json.RawMessage, fallback error) (Order, error) {
	if msg, failed := httpclient.Failed(raw); failed {
		return Order{}, apperr.Network(http.StatusOK, firstNonEmpty(msg, fallback.Error()), nil)
	}
	if len(raw) == 0 {
		return Order{}, nil
	}
	return httpclient.DecodeObject[Order](raw, "data", "order")
}

// statusError gives status lookups their order-specific messages.
func statusError(err error) error {
	switch apperr.StatusOf(err) {
	case http.StatusNotFound:
		return apperr.NotFound(ErrOrderNotFound.Error())
	case http.StatusForbidden:
		return apperr.Network(http.StatusForbidden, ErrUnauthorized.Error(), nil)
	case http.StatusUnauthorized:
		return apperr.Network(http.StatusUnauthorized, ErrAuthentication.Error(), nil)
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

package loyalty

import (
	"context"
	"encoding/json"
	"net/url"

	"ramyeon-storefront/internal/httpclient"
)

type Repository interface {
	Points(ctx context.Context, customerID string) (int, error)
	Award(ctx context.Context, customerID string, req AwardRequest) (AwardReply, error)
	Redeem(ctx context.Context, customerID string, req RedeemRequest) (RedeemReply, error)
	Tier(ctx context.Context, customerID string) (Tier, error)
	Tiers(ctx context.Context) ([]Tier, error)
}

type repository struct {
	client *httpclient.Client
}

func NewRepository(client *httpclient.Client) Repository {
	return &repository{client: client}
}

func customerPath(customerID, suffix string) string {
	return "/customers/" + url.PathEscape(customerID) + "/" + suffix
}

// Points reads the balance off the customer profile; there is no separate
// balance resource.
func (r *repository) Points(ctx context.Context, customerID string) (int, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, customerPath(customerID, ""), nil, &raw); err != nil {
		return 0, err
	}
	c, err := httpclient.DecodeObject[customerPoints](raw, "data", "customer")
	return c.LoyaltyPoints, err
}

func (r *repository) Award(ctx context.Context, customerID string, req AwardRequest) (AwardReply, error) {
	var raw json.RawMessage
	if err := r.client.Post(ctx, customerPath(customerID, "loyalty/award/"), req, &raw); err != nil {
		return AwardReply{}, err
	}
	return httpclient.DecodeObject[AwardReply](raw, "award", "data")
}

func (r *repository) Redeem(ctx context.Context, customerID string, req RedeemRequest) (RedeemReply, error) {
	var raw json.RawMessage
	if err := r.client.Post(ctx, customerPath(customerID, "loyalty/redeem/"), req, &raw); err != nil {
		return RedeemReply{}, err
	}
	return httpclient.DecodeObject[RedeemReply](raw, "data")
}

func (r *repository) Tier(ctx context.Context, customerID string) (Tier, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, customerPath(customerID, "loyalty/tier/"), nil, &raw); err != nil {
		return Tier{}, err
	}
	return httpclient.DecodeObject[Tier](raw, "tier", "data")
}

func (r *repository) Tiers(ctx context.Context) ([]Tier, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/loyalty/tiers/", nil, &raw); err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Tier](raw, "tiers", "data.tiers", "data")
}

package httpapi

import (
	"net/http"

	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/result"
)

type loyaltyView struct {
	Balance int                   `json:"balance"`
	Tier    loyalty.Tier          `json:"tier"`
	History []loyalty.Transaction `json:"history"`
}

type redeemRequest struct {
	Points  int    `json:"points"`
	OrderID string `json:"order_id"`
}

// getLoyalty answers with the local ledger. ?refresh=true first reloads
// the balance from the backend, which also resets the history.
func (h *Handler) getLoyalty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := h.optionalCustomerID(ctx)

	authoritative := true
	if customerID != "" && r.URL.Query().Get("refresh") == "true" {
		if _, err := h.Loyalty.Refresh(ctx, customerID); err != nil {
			authoritative = false
		}
	}
	tier, tierOK := h.Loyalty.CurrentTier(ctx, customerID)

	result.Write(w, http.StatusOK, result.Of(loyaltyView{
		Balance: h.Loyalty.Balance(),
		Tier:    tier,
		History: h.Loyalty.History(),
	}, authoritative && tierOK))
}

func (h *Handler) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.Loyalty.Tiers(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, tiers)
}

func (h *Handler) redeemPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req redeemRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	customerID, err := h.customerID(ctx)
	if err != nil {
		fail(w, err)
		return
	}
	res, err := h.Loyalty.Redeem(ctx, req.Points, customerID, req.OrderID)
	if err != nil {
		fail(w, err)
		return
	}
	result.Write(w, http.StatusOK, result.Of(res, res.Authoritative))
}

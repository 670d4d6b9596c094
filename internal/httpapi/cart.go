package httpapi

import (
	"net/http"

	"ramyeon-storefront/internal/cart"
	"ramyeon-storefront/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type promotionRequest struct {
	Code string `json:"code"`
}

type pointsRequest struct {
	Points int `json:"points"`
}

// cartView is the cart plus the points figures the UI shows next to it.
type cartView struct {
	cart.Snapshot
	PointsDiscount      decimal.Decimal `json:"points_discount"`
	PointsToRedeem      int             `json:"points_to_redeem"`
	MaxRedeemablePoints int             `json:"max_redeemable_points"`
}

func (h *Handler) view() cartView {
	return cartView{
		Snapshot:            h.Cart.Snapshot(),
		PointsDiscount:      h.Cart.PointsDiscountAmount(),
		PointsToRedeem:      h.Cart.PointsToRedeem(),
		MaxRedeemablePoints: h.Cart.MaxRedeemablePoints(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ok(w, h.view())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.Cart.Clear(r.Context())
	ok(w, h.view())
}

// addItem prices the line from the catalog; the client only names the
// product and a quantity.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		logger.Layer(ctx, "handler", "addItem").Warn("product lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		fail(w, err)
		return
	}

	if _, err := h.Cart.AddItem(ctx, cart.LineItem{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.Price,
		Quantity:   req.Quantity,
		Category:   p.CategoryName,
		CategoryID: p.CategoryID,
		ImageURL:   p.ImageURL,
	}); err != nil {
		fail(w, err)
		return
	}
	created(w, h.view())
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	if _, err := h.Cart.UpdateQuantity(r.Context(), r.PathValue("productID"), req.Quantity); err != nil {
		fail(w, err)
		return
	}
	ok(w, h.view())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Cart.RemoveItem(r.Context(), r.PathValue("productID")); err != nil {
		fail(w, err)
		return
	}
	ok(w, h.view())
}

func (h *Handler) applyPromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	applied, err := h.Cart.ApplyPromotionCode(r.Context(), req.Code)
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, applied)
}

func (h *Handler) removePromotion(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Cart.RemovePromotion(r.Context(), r.PathValue("id")); err != nil {
		fail(w, err)
		return
	}
	ok(w, h.view())
}

func (h *Handler) applyPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pointsRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	applied, err := h.Cart.ApplyLoyaltyPoints(ctx, req.Points, h.optionalCustomerID(ctx))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, applied)
}

func (h *Handler) removePoints(w http.ResponseWriter, r *http.Request) {
	h.Cart.RemoveLoyaltyPoints(r.Context())
	ok(w, h.view())
}

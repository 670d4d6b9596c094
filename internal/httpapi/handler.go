// Package httpapi is the JSON surface the storefront UI talks to. Every
// response body is a result.Result.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/auth"
	"ramyeon-storefront/internal/cart"
	"ramyeon-storefront/internal/category"
	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/order"
	"ramyeon-storefront/internal/payment"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
	"ramyeon-storefront/internal/result"
)

// Identity resolves the current customer. *auth.Session implements it.
type Identity interface {
	CustomerID(ctx context.Context) (string, error)
	Customer(ctx context.Context) (auth.Customer, bool)
}

type Handler struct {
	Products      product.Service
	Categories    category.Service
	Promotions    promotion.Service
	Loyalty       loyalty.Service
	Cart          cart.Service
	Orders        order.Service
	Payments      payment.Gateway
	PaymentConfig payment.PublicConfig
	Auth          auth.Service
	Identity      Identity
}

// Routes registers every endpoint under /api.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("POST /api/cart/items", h.addItem)
	mux.HandleFunc("PATCH /api/cart/items/{productID}", h.updateItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.removeItem)
	mux.HandleFunc("POST /api/cart/promotions", h.applyPromotion)
	mux.HandleFunc("DELETE /api/cart/promotions/{id}", h.removePromotion)
	mux.HandleFunc("POST /api/cart/loyalty", h.applyPoints)
	mux.HandleFunc("DELETE /api/cart/loyalty", h.removePoints)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/search", h.searchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/categories/{id}/subcategories", h.listSubcategories)

	mux.HandleFunc("GET /api/promotions", h.listPromotions)

	mux.HandleFunc("GET /api/loyalty", h.getLoyalty)
	mux.HandleFunc("GET /api/loyalty/tiers", h.listTiers)
	mux.HandleFunc("POST /api/loyalty/redeem", h.redeemPoints)

	mux.HandleFunc("POST /api/orders", h.checkout)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/search", h.searchOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/orders/{id}/status", h.getOrderStatus)
	mux.HandleFunc("PATCH /api/orders/{id}", h.updateOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.cancelOrder)

	mux.HandleFunc("POST /api/payments", h.createPayment)
	mux.HandleFunc("GET /api/payments/config", h.paymentConfig)
	mux.HandleFunc("GET /api/payments/sources/{id}", h.sourceStatus)
	mux.HandleFunc("GET /api/payments/intents/{id}", h.intentStatus)

	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.HandleFunc("GET /api/auth/profile", h.profile)

	return mux
}

var errInvalidBody = apperr.Validation("invalid request body")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

func ok[T any](w http.ResponseWriter, data T) {
	result.Write(w, http.StatusOK, result.OK(data))
}

func created[T any](w http.ResponseWriter, data T) {
	result.Write(w, http.StatusCreated, result.OK(data))
}

func fail(w http.ResponseWriter, err error) {
	result.WriteError(w, err)
}

// customerID requires a signed-in customer.
func (h *Handler) customerID(ctx context.Context) (string, error) {
	id, err := h.Identity.CustomerID(ctx)
	if err != nil {
		return "", apperr.Network(http.StatusUnauthorized, "", err)
	}
	return id, nil
}

// optionalCustomerID returns "" for anonymous callers.
func (h *Handler) optionalCustomerID(ctx context.Context) string {
	id, err := h.Identity.CustomerID(ctx)
	if err != nil {
		return ""
	}
	return id
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

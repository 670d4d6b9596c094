package httpapi

import (
	"net/http"
	"strings"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/cart"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/order"
	"ramyeon-storefront/internal/payment"
	"ramyeon-storefront/internal/result"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	DeliveryAddress     map[string]any `json:"delivery_address"`
	DeliveryType        string         `json:"delivery_type"`
	PaymentMethod       string         `json:"payment_method"`
	Notes               string         `json:"notes"`
	SpecialInstructions string         `json:"special_instructions"`
}

// checkoutView is the placed order and, for online methods, where to pay.
type checkoutView struct {
	Order        order.Order       `json:"order"`
	Checkout     *payment.Checkout `json:"checkout,omitempty"`
	Instructions []string          `json:"instructions"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// checkout places an order from the cart. Promotion discounts are priced
// again by the order service; only the points discount travels as a flat
// amount. The cart is cleared once the order exists and any online
// payment has been started.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.Layer(ctx, "handler", "checkout")

	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	customerID, err := h.customerID(ctx)
	if err != nil {
		fail(w, err)
		return
	}

	snap := h.Cart.Snapshot()
	var promos []string
	for _, ap := range snap.AppliedPromotions {
		if ap.Kind == cart.KindPromotion {
			promos = append(promos, ap.ID())
		}
	}

	o, err := h.Orders.CreateOrder(ctx, order.CreateRequest{
		CustomerID:          customerID,
		Items:               order.FromCart(snap.Items),
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryType:        req.DeliveryType,
		PaymentMethod:       req.PaymentMethod,
		PointsToRedeem:      h.Cart.PointsToRedeem(),
		Notes:               req.Notes,
		SpecialInstructions: req.SpecialInstructions,
		Promotions:          promos,
		Total:               snap.Totals.Subtotal,
		Discount:            h.Cart.PointsDiscountAmount(),
	})
	if err != nil {
		fail(w, err)
		return
	}

	method := payment.Method(o.PaymentMethod)
	if method == "" {
		method = payment.Method(order.DefaultPaymentMethod)
	}
	amount := o.Total
	if !amount.IsPositive() {
		amount = snap.Totals.Total
	}

	view := checkoutView{Order: o, Instructions: payment.Instructions(method, amount)}
	if method.Online() {
		co, err := h.Payments.CreatePayment(ctx, method, h.paymentRequest(r, o.ID, amount))
		if err != nil {
			log.Error("failed to start payment", zap.String("order_id", o.ID), zap.Error(err))
			fail(w, err)
			return
		}
		view.Checkout = co
	}

	h.Cart.Clear(ctx)
	created(w, view)
}

func (h *Handler) paymentRequest(r *http.Request, orderID string, amount decimal.Decimal) payment.Request {
	req := payment.Request{OrderID: orderID, Amount: amount}
	if c, found := h.Identity.Customer(r.Context()); found {
		req.CustomerName = strings.TrimSpace(c.FirstName + " " + c.LastName)
		req.CustomerEmail = c.Email
	}
	return req
}

// listOrders answers with the mirrored list, flagged non-authoritative,
// when the backend cannot be reached.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, err := h.customerID(ctx)
	if err != nil {
		fail(w, err)
		return
	}

	orders, err := h.Orders.GetOrders(ctx, customerID, order.Filters{
		Status: order.Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		if !apperr.IsNetwork(err) {
			fail(w, err)
			return
		}
		local := h.Orders.LocalOrders(ctx, customerID)
		result.Write(w, http.StatusOK, result.Fallback(local.Orders))
		return
	}
	ok(w, orders)
}

func (h *Handler) searchOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.Orders.SearchOrders(ctx, r.URL.Query().Get("q"), h.optionalCustomerID(ctx))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, o)
}

func (h *Handler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	info, err := h.Orders.GetOrderStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, struct {
		order.StatusInfo
		Summary order.Summary `json:"summary"`
	}{info, order.StatusSummary(info.Status)})
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.UpdateRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.Orders.UpdateOrder(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.Orders.CancelOrder(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, o)
}

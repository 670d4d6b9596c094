package httpapi

import (
	"net/http"

	"ramyeon-storefront/internal/payment"

	"github.com/shopspring/decimal"
)

type payRequest struct {
	OrderID string          `json:"order_id"`
	Method  payment.Method  `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
}

type paymentView struct {
	Checkout     *payment.Checkout `json:"checkout"`
	Instructions []string          `json:"instructions"`
}

// createPayment starts a payment for an existing order, e.g. a retry
// after a failed checkout redirect.
func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	co, err := h.Payments.CreatePayment(r.Context(), req.Method, h.paymentRequest(r, req.OrderID, req.Amount))
	if err != nil {
		fail(w, err)
		return
	}
	created(w, paymentView{Checkout: co, Instructions: payment.Instructions(req.Method, req.Amount)})
}

func (h *Handler) paymentConfig(w http.ResponseWriter, r *http.Request) {
	ok(w, h.PaymentConfig)
}

func (h *Handler) sourceStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Payments.SourceStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, st)
}

func (h *Handler) intentStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Payments.PaymentIntentStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, st)
}

package httpapi

import (
	"errors"
	"net/http"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/auth"
	"ramyeon-storefront/internal/logger"

	"go.uber.org/zap"
)

// login stores the session and seeds the loyalty balance when the backend
// returns the customer with the tokens.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decode(r, &creds); err != nil {
		fail(w, err)
		return
	}
	pair, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		fail(w, credentialsError(err))
		return
	}
	h.signedIn(pair)
	ok(w, pair)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input auth.RegisterInput
	if err := decode(r, &input); err != nil {
		fail(w, err)
		return
	}
	pair, err := h.Auth.Register(r.Context(), input)
	if err != nil {
		fail(w, credentialsError(err))
		return
	}
	h.signedIn(pair)
	created(w, pair)
}

func credentialsError(err error) error {
	if errors.Is(err, auth.ErrMissingCredentials) {
		return apperr.Validation(err.Error())
	}
	return err
}

func (h *Handler) signedIn(pair auth.TokenPair) {
	if pair.Customer != nil {
		h.Loyalty.SetBalance(pair.Customer.LoyaltyPoints)
	}
}

// logout drops the session and everything cached for the customer. The
// cart survives so a guest can keep shopping.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Auth.Logout(ctx); err != nil {
		logger.Layer(ctx, "handler", "logout").Warn("session not fully cleared", zap.Error(err))
	}
	h.Loyalty.Clear()
	h.Orders.ClearCache()
	ok(w, map[string]bool{"logged_out": true})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	c, err := h.Auth.Profile(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	h.Loyalty.SetBalance(c.LoyaltyPoints)
	ok(w, c)
}

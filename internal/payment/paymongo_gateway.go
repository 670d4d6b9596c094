package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"

	"go.uber.org/zap"
)

const paymongoBaseURL = "https://api.paymongo.com/v1"

type paymongoGateway struct {
	secretKey  string
	baseURL    string
	origin     string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewPayMongoGateway builds a gateway that redirects customers back to
// origin. An empty secret key is accepted here and rejected on first use.
func NewPayMongoGateway(secretKey, origin string, m *metrics.Metrics) Gateway {
	if secretKey == "" {
		logger.L().Warn("PayMongo secret key is empty")
	}

	return &paymongoGateway{
		secretKey: secretKey,
		baseURL:   paymongoBaseURL,
		origin:    strings.TrimRight(origin, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		metrics: m,
	}
}

func (p *paymongoGateway) redirects(orderID string) redirect {
	order := url.QueryEscape(orderID)
	return redirect{
		Success: p.origin + "/#/cart?payment=success&order=" + order,
		Failed:  p.origin + "/#/cart?payment=failed&order=" + order,
	}
}

// ----------------- CreatePayment -----------------

// CreatePayment starts a checkout. Wallets get a source; cards get a
// payment link. A Maya source that cannot be created falls back to a
// payment link.
func (p *paymongoGateway) CreatePayment(ctx context.Context, method Method, req Request) (*Checkout, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.String("method", string(method)),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	if p.secretKey == "" {
		log.Error("payment gateway not configured")
		return nil, ErrMissingSecretKey
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, apperr.Validation(ErrEmptyOrderID.Error())
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation(ErrInvalidAmount.Error())
	}

	switch method {
	case MethodGCash:
		return p.createSource(ctx, log, method, req, "Failed to create GCash payment")
	case MethodGrabPay:
		return p.createSource(ctx, log, method, req, "Failed to create GrabPay payment")
	case MethodMaya:
		checkout, err := p.createSource(ctx, log, method, req, "Failed to create PayMaya payment")
		if err == nil {
			return checkout, nil
		}
		log.Warn("maya source failed, falling back to payment link", zap.Error(err))
		p.metrics.Fallback("maya_payment_link")
		link, linkErr := p.createLink(ctx, log, req, "Failed to create PayMaya payment link")
		if linkErr != nil {
			log.Error("maya payment link failed", zap.Error(linkErr))
			return nil, err
		}
		return link, nil
	case MethodCard:
		return p.createLink(ctx, log, req, "Failed to create card payment link")
	}
	return nil, apperr.Validationf("%s: %q", ErrUnsupportedMethod, method)
}

func (p *paymongoGateway) createSource(ctx context.Context, log *zap.Logger, method Method, req Request, failure string) (*Checkout, error) {
	redir := p.redirects(req.OrderID)
	body := wrap(sourceAttributes{
		Type:     method,
		Amount:   money.Centavos(req.Amount),
		Currency: currencyPHP,
		Redirect: redir,
		Billing:  billing{Name: req.CustomerName, Email: req.CustomerEmail},
		Metadata: map[string]string{"order_id": req.OrderID},
	})

	var res resource
	if err := p.do(ctx, log, http.MethodPost, "/sources", body, &res, failure); err != nil {
		return nil, err
	}

	log.Info("PayMongo source created", zap.String("source_id", res.Data.ID), zap.String("status", res.Data.Attributes.Status))
	return &Checkout{
		ID:          res.Data.ID,
		Type:        CheckoutSource,
		CheckoutURL: res.Data.Attributes.Redirect.CheckoutURL,
		Status:      res.Data.Attributes.Status,
		SuccessURL:  redir.Success,
		FailedURL:   redir.Failed,
	}, nil
}

func (p *paymongoGateway) createLink(ctx context.Context, log *zap.Logger, req Request, failure string) (*Checkout, error) {
	redir := p.redirects(req.OrderID)
	body := wrap(linkAttributes{
		Amount:      money.Centavos(req.Amount),
		Currency:    currencyPHP,
		Description: fmt.Sprintf("Order #%s - Ramyeon Order", req.OrderID),
		Remarks:     "Order " + req.OrderID,
		Redirect:    redir,
	})

	var res resource
	if err := p.do(ctx, log, http.MethodPost, "/links", body, &res, failure); err != nil {
		return nil, err
	}

	log.Info("PayMongo payment link created", zap.String("link_id", res.Data.ID))
	return &Checkout{
		ID:          res.Data.ID,
		Type:        CheckoutPaymentLink,
		CheckoutURL: res.Data.Attributes.CheckoutURL,
		Status:      res.Data.Attributes.Status,
		SuccessURL:  redir.Success,
		FailedURL:   redir.Failed,
	}, nil
}

// ----------------- Status -----------------

func (p *paymongoGateway) SourceStatus(ctx context.Context, sourceID string) (*PaymentStatus, error) {
	return p.status(ctx, "/sources/", sourceID, "Failed to get source status")
}

func (p *paymongoGateway) PaymentIntentStatus(ctx context.Context, intentID string) (*PaymentStatus, error) {
	return p.status(ctx, "/payment_intents/", intentID, "Failed to get payment intent status")
}

func (p *paymongoGateway) status(ctx context.Context, prefix, id, failure string) (*PaymentStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("resource_id", id))

	if p.secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("payment id is required")
	}

	var res resource
	if err := p.do(ctx, log, http.MethodGet, prefix+url.PathEscape(id), nil, &res, failure); err != nil {
		return nil, err
	}

	return &PaymentStatus{
		ID:     res.Data.ID,
		Type:   res.Data.Type,
		Status: res.Data.Attributes.Status,
		Amount: res.Data.Attributes.Amount,
	}, nil
}

// ----------------- Transport -----------------

// do sends one authenticated request. A non-2xx reply becomes a network
// error carrying the first PayMongo error detail, or failure when there
// is none.
func (p *paymongoGateway) do(ctx context.Context, log *zap.Logger, method, path string, body, out any, failure string) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to marshal payment request", zap.Error(err))
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return err
	}
	req.SetBasicAuth(p.secretKey, "")
	req.Header.Set("Content-Type", "application/json")

	timer := metrics.StartTimer()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.metrics.ObserveBackend(method, 0, timer.Duration())
		log.Error("PayMongo request failed", zap.Error(err))
		return apperr.Network(0, failure, err)
	}
	defer resp.Body.Close()
	p.metrics.ObserveBackend(method, resp.StatusCode, timer.Duration())

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return apperr.Network(resp.StatusCode, failure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("PayMongo returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return apperr.Network(resp.StatusCode, errorDetail(bodyBytes, failure), nil)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("failed decoding PayMongo response", zap.Error(err))
		return apperr.Network(resp.StatusCode, "invalid payment gateway response", err)
	}
	return nil
}

func errorDetail(body []byte, fallback string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 && e.Errors[0].Detail != "" {
		return e.Errors[0].Detail
	}
	return fallback
}

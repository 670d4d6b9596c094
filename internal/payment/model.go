package payment

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodGCash   Method = "gcash"
	MethodGrabPay Method = "grab_pay"
	MethodMaya    Method = "maya"
	MethodCard    Method = "card"
	MethodCash    Method = "cash"
)

// Online reports whether the method is settled through the gateway.
func (m Method) Online() bool {
	switch m {
	case MethodGCash, MethodGrabPay, MethodMaya, MethodCard:
		return true
	}
	return false
}

// OnlineMethods are the methods the gateway can settle.
var OnlineMethods = []Method{MethodGCash, MethodGrabPay, MethodMaya, MethodCard}

// PublicConfig is the client-side view of the gateway. It never carries
// the secret key.
type PublicConfig struct {
	PublicKey string   `json:"public_key"`
	Mode      string   `json:"mode"`
	Methods   []Method `json:"methods"`
}

// NewPublicConfig defaults an empty mode to "test".
func NewPublicConfig(publicKey, mode string) PublicConfig {
	if mode == "" {
		mode = "test"
	}
	return PublicConfig{PublicKey: publicKey, Mode: mode, Methods: slices.Clone(OnlineMethods)}
}

const (
	CheckoutSource      = "source"
	CheckoutPaymentLink = "payment_link"

	currencyPHP = "PHP"
)

type Request struct {
	OrderID       string
	Amount        decimal.Decimal
	CustomerName  string
	CustomerEmail string
}

// Checkout is where the customer is sent to pay.
type Checkout struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	SuccessURL  string `json:"success_url"`
	FailedURL   string `json:"failed_url"`
}

type PaymentStatus struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// -- PayMongo wire format --

type redirect struct {
	Success     string `json:"success"`
	Failed      string `json:"failed"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

type billing struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type sourceAttributes struct {
	Type     Method            `json:"type"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Redirect redirect          `json:"redirect"`
	Billing  billing           `json:"billing"`
	Metadata map[string]string `json:"metadata"`
}

type linkAttributes struct {
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Remarks     string   `json:"remarks"`
	Redirect    redirect `json:"redirect"`
}

type envelope[T any] struct {
	Data struct {
		Attributes T `json:"attributes"`
	} `json:"data"`
}

func wrap[T any](attrs T) envelope[T] {
	var e envelope[T]
	e.Data.Attributes = attrs
	return e
}

type resource struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Amount      int64    `json:"amount"`
			Status      string   `json:"status"`
			CheckoutURL string   `json:"checkout_url"`
			Redirect    redirect `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

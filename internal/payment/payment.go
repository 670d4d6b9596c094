// Package payment creates hosted checkouts on PayMongo for wallet and
// card payments.
package payment

import "context"

type Gateway interface {
	CreatePayment(ctx context.Context, method Method, req Request) (*Checkout, error)
	SourceStatus(ctx context.Context, sourceID string) (*PaymentStatus, error)
	PaymentIntentStatus(ctx context.Context, intentID string) (*PaymentStatus, error)
}

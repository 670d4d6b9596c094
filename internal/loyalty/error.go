package loyalty

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidPoints    = errors.New("points to redeem must be positive")
	ErrBelowMinimum     = errors.New("minimum redemption is 40 points")
	ErrNegativeAmount   = errors.New("order amount must not be negative")
	ErrCustomerRequired = errors.New("customer id is required")

	// -- Resource State --
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)

const (
	reasonOrder      = "Order completion"
	reasonOrderLocal = "Order completion (local)"
	reasonRedeemed   = "Points redemption"
)

package payment

import "errors"

var (
	ErrMissingSecretKey  = errors.New("Payment service secret key is not configured")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrEmptyOrderID      = errors.New("order id is required")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
)

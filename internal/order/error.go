package order

import "errors"

var (
	// -- Validation & Input --
	ErrCustomerRequired = errors.New("customer id is required")
	ErrNoItems          = errors.New("order has no items")
	ErrInvalidItem      = errors.New("order item needs a product id and a positive quantity")
	ErrInvalidOrderID   = errors.New("Invalid order ID")
	ErrInvalidStatus    = errors.New("unknown order status")

	// -- Backend --
	ErrOrderNotFound  = errors.New("Order not found")
	ErrUnauthorized   = errors.New("Unauthorized access to order")
	ErrAuthentication = errors.New("Authentication required")
	ErrCreateFailed   = errors.New("Failed to create order")
	ErrUpdateFailed   = errors.New("Order update failed")
	ErrCancelFailed   = errors.New("Order cancellation failed")
)

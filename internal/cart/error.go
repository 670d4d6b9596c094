package cart

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyProductID   = errors.New("product id is required")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrEmptyPromotionID = errors.New("promotion id is required")

	// -- Resource State --
	ErrItemNotFound         = errors.New("Item not found in cart")
	ErrPromotionNotApplied  = errors.New("Promotion not found")
	ErrNoDiscountApplicable = errors.New("No discount applicable")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrCorruptCart          = errors.New("stored cart is unreadable")
)

package promotion

import "errors"

var (
	ErrNotFound   = errors.New("Promotion not found or not active")
	ErrInactive   = errors.New("Promotion is not active")
	ErrNotStarted = errors.New("Promotion has not started yet")
	ErrExpired    = errors.New("Promotion has expired")
	ErrEmptyCode  = errors.New("promotion code is required")
)

const (
	reasonEmpty         = "No promotion or empty cart"
	reasonCategory      = "Promotion not applicable to cart items"
	reasonApplicable    = "Promotion is applicable"
	reasonMinimumFormat = "Minimum order of %s required"
)

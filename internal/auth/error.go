package auth

import "errors"

var (
	// -- Validation & Input --
	ErrMissingCredentials = errors.New("email and password are required")

	// -- Session State --
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoCustomerClaim  = errors.New("access token carries no customer id")
)

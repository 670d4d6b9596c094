package auth

import "context"

type contextKey string

const (
	accessTokenKey contextKey = "access_token"
	customerIDKey  contextKey = "customer_id"
)

// WithToken attaches a request's access token and the customer it names.
func WithToken(ctx context.Context, token, customerID string) context.Context {
	ctx = context.WithValue(ctx, accessTokenKey, token)
	return context.WithValue(ctx, customerIDKey, customerID)
}

func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(accessTokenKey).(string)
	return tok
}

func CustomerIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(customerIDKey).(string)
	return id, ok && id != ""
}

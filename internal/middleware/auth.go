package middleware

import (
	"net/http"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/auth"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/result"

	"go.uber.org/zap"
)

// AuthMiddleware attaches the caller's access token and customer id to the
// request context. Requests without a token pass through anonymously; a
// token that cannot be read or has expired is rejected.
func AuthMiddleware(next http.Handler) http.Handler {
	return authMiddleware(time.Now)(next)
}

func authMiddleware(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			customerID, err := auth.CustomerIDFromToken(token)
			if err != nil || auth.TokenExpired(token, now()) {
				logger.FromCtx(r.Context()).Warn("rejected access token", zap.Error(err))
				result.Write(w, http.StatusUnauthorized, result.Fail[any](apperr.Network(http.StatusUnauthorized, "", err)))
				return
			}

			ctx := auth.WithToken(r.Context(), token, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

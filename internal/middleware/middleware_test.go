package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ramyeon-storefront/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestCors(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := CORS("http://localhost:3000", "https://shop.example")(nextHandler)

	t.Run("OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unknown origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuth(t *testing.T) {
	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.CustomerIDFrom(r.Context())
			assert.False(t, ok, "Context should not contain a customer")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/api/cart", nil)
		w := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString := signed(t, jwt.MapClaims{
			"customer_id": "CUST-00040",
			"exp":         time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.CustomerIDFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "CUST-00040", id)
			assert.Equal(t, tokenString, auth.TokenFrom(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cookie Token", func(t *testing.T) {
		tokenString := signed(t, jwt.MapClaims{"sub": "CUST-7"})

		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: tokenString})
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := auth.CustomerIDFrom(r.Context())
			assert.Equal(t, "CUST-7", id)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		tokenString := signed(t, jwt.MapClaims{
			"customer_id": "CUST-00040",
			"exp":         time.Now().Add(-time.Hour).Unix(),
		})

		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("Authorization", "Basic user:pass") // Wrong scheme
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.CustomerIDFrom(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("StrictTierForPayments", func(t *testing.T) {
		handler := NewRateLimiter().Middleware(ok)

		codes := map[int]int{}
		for range burstStrict + 1 {
			req := httptest.NewRequest("POST", "/api/payments", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes[w.Code]++
		}
		assert.Equal(t, burstStrict, codes[http.StatusOK])
		assert.Equal(t, 1, codes[http.StatusTooManyRequests])

		// General quota is separate.
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/cart", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("SeparateDevices", func(t *testing.T) {
		handler := NewRateLimiter().Middleware(ok)

		for range burstStrict {
			req := httptest.NewRequest("POST", "/api/auth/login", nil)
			req.Header.Set("X-Device-ID", "d1")
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.Header.Set("X-Device-ID", "d2")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("CustomerIdentity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("X-Device-ID", "d1")
		assert.Equal(t, "device:d1", identity(req))

		req = req.WithContext(auth.WithToken(req.Context(), "tok", "c1"))
		assert.Equal(t, "customer:c1", identity(req))

		bare := httptest.NewRequest("GET", "/", nil)
		assert.Equal(t, "ip:192.0.2.1", identity(bare))
	})

	t.Run("SweepDropsIdleVisitors", func(t *testing.T) {
		l := NewRateLimiter()
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		l.getVisitor("ip:1:general", limitGeneral, burstGeneral)
		now = now.Add(visitorTTL + time.Second)
		l.getVisitor("ip:2:general", limitGeneral, burstGeneral)
		l.sweep()

		assert.Len(t, l.visitors, 1)
		assert.Contains(t, l.visitors, "ip:2:general")
	})
}

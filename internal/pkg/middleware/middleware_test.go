package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/middleware"
	"conectaloja/internal/pkg/token"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewService("segredo", time.Hour)
	valid, err := tokens.GenerateToken("u1", "customer")
	require.NoError(t, err)

	var seen middleware.UserClaims
	protected := middleware.NewAuthMiddleware(tokens)(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.GetUserClaimsFromContext(r.Context())
		okHandler(w, r)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"esquema errado", "Basic abc", http.StatusUnauthorized},
		{"token inválido", "Bearer lixo", http.StatusUnauthorized},
		{"token válido", "Bearer " + valid, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			protected(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				var body domain.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "UNAUTHORIZED", body.Category)
				assert.False(t, body.Success)
			}
		})
	}

	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, domain.RoleCustomer, seen.Role)
}

func TestPermissionMiddleware(t *testing.T) {
	tokens := token.NewService("segredo", time.Hour)
	auth := middleware.NewAuthMiddleware(tokens)
	adminOnly := auth(middleware.PermissionMiddleware(domain.RoleAdmin)(okHandler))

	for role, status := range map[string]int{"admin": http.StatusNoContent, "customer": http.StatusForbidden} {
		signed, err := tokens.GenerateToken("u1", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/employees", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		adminOnly(rec, req)

		assert.Equal(t, status, rec.Code, role)
	}
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limited := middleware.RateLimiter(cache.NewRedisClientFrom(rdb), 2, time.Minute, logger.NewNopLogger())(http.HandlerFunc(okHandler))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	first := do("10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1").Code)
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	limited := middleware.RateLimiter(cache.NewRedisClientFrom(rdb), 1, time.Minute, logger.NewNopLogger())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithOutput("info", &buf)

	h := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/cart/items", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/v1/cart/items", entry["path"])
	assert.EqualValues(t, 201, entry["status"])
}

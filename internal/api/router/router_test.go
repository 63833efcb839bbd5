package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conectaloja/internal/api/cart"
	"conectaloja/internal/api/product"
	"conectaloja/internal/api/router"
	"conectaloja/internal/api/user"
	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/token"
)

// Os stubs embutem a interface: qualquer método não sobrescrito entra em pânico se for chamado.
type stubProducts struct{ product.ProductService }

func (stubProducts) GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1", Name: "Café"}}, nil
}

func (stubProducts) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = "p2"
	return p, nil
}

type stubUsers struct{ user.UserService }

type stubCarts struct{ cart.CartService }

func (stubCarts) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	return domain.Cart{ID: "c1", UserID: userID}, nil
}

func setup(t *testing.T, limit router.RateLimit) (http.Handler, *token.Service) {
	t.Helper()
	log := logger.NewNopLogger()
	tokens := token.NewService("segredo", time.Hour)
	h := router.Handlers{
		Product: product.NewHandler(stubProducts{}, log),
		User:    user.NewHandler(stubUsers{}, log),
		Cart:    cart.NewHandler(stubCarts{}, log),
	}
	return router.NewRouter(h, tokens, limit, log), tokens
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, tokens *token.Service, role domain.UserRole) string {
	t.Helper()
	signed, err := tokens.GenerateToken("u1", string(role))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestPing(t *testing.T) {
	h, _ := setup(t, router.RateLimit{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestPublicCatalog(t *testing.T) {
	h, _ := setup(t, router.RateLimit{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Café")
}

func TestProductWritesRequireStaff(t *testing.T) {
	h, tokens := setup(t, router.RateLimit{})
	body := `{"name":"Chá","price":"8"}`

	anon := serve(h, httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, domain.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, domain.RoleEmployee))
	assert.Equal(t, http.StatusCreated, serve(h, req).Code)
}

func TestEmployeesRequireAdmin(t *testing.T) {
	h, tokens := setup(t, router.RateLimit{})

	req := httptest.NewRequest(http.MethodPost, "/v1/employees", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, tokens, domain.RoleEmployee))

	assert.Equal(t, http.StatusForbidden, serve(h, req).Code)
}

func TestCartRequiresAuth(t *testing.T) {
	h, tokens := setup(t, router.RateLimit{})

	assert.Equal(t, http.StatusUnauthorized, serve(h, httptest.NewRequest(http.MethodGet, "/v1/cart", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set("Authorization", bearer(t, tokens, domain.RoleCustomer))
	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"u1"`)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := setup(t, router.RateLimit{})

	rec := serve(h, httptest.NewRequest(http.MethodPatch, "/v1/cart", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	h, _ := setup(t, router.RateLimit{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/cart/sync")
}

func TestRateLimitApplied(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h, _ := setup(t, router.RateLimit{Counter: cache.NewRedisClientFrom(rdb), MaxRequests: 1, Period: time.Minute})

	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
}

package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"conectaloja/internal/api/cart"
	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/middleware"
	"conectaloja/internal/pkg/token"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID, productID string) (domain.Cart, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID string) (domain.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartService) SyncLocalCart(ctx context.Context, userID string, lines []domain.CartLine) (domain.Cart, error) {
	args := m.Called(ctx, userID, lines)
	return args.Get(0).(domain.Cart), args.Error(1)
}

const productA = "1d8e5f0a-3a57-4c8f-9a55-0d9f3f6a0c11"

func sampleCart() domain.Cart {
	return domain.Cart{
		ID:     "c1",
		UserID: "u1",
		Items: []domain.CartItem{
			{Product: domain.Product{ID: productA, Name: "Café"}, Quantity: 2},
		},
	}
}

// newServer monta as rotas de carrinho atrás do middleware de autenticação real.
func newServer(t *testing.T, svc *MockCartService) (*httptest.Server, string) {
	t.Helper()
	tokens := token.NewService("segredo", time.Hour)
	signed, err := tokens.GenerateToken("u1", string(domain.RoleCustomer))
	require.NoError(t, err)

	h := cart.NewHandler(svc, logger.NewNopLogger())
	auth := middleware.NewAuthMiddleware(tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/cart", auth(h.GetCartHandler))
	mux.HandleFunc("DELETE /v1/cart", auth(h.ClearCartHandler))
	mux.HandleFunc("POST /v1/cart/items", auth(h.AddItemHandler))
	mux.HandleFunc("PUT /v1/cart/items/{productId}", auth(h.UpdateItemHandler))
	mux.HandleFunc("DELETE /v1/cart/items/{productId}", auth(h.RemoveItemHandler))
	mux.HandleFunc("POST /v1/cart/sync", auth(h.SyncHandler))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, signed
}

func call(t *testing.T, srv *httptest.Server, tok, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeCart(t *testing.T, resp *http.Response) domain.CartResponse {
	t.Helper()
	var body domain.CartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetCartHandler(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("GetCart", mock.Anything, "u1").Return(sampleCart(), nil).Once()

	resp := call(t, srv, tok, http.MethodGet, "/v1/cart", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeCart(t, resp)
	assert.True(t, body.Success)
	require.Len(t, body.Cart.Items, 1)
	assert.Equal(t, productA, body.Cart.Items[0].Product.ID)
	svc.AssertExpectations(t)
}

func TestGetCartHandler_EmptyCartHasEmptyItemsArray(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("GetCart", mock.Anything, "u1").Return(domain.Cart{ID: "c1", UserID: "u1"}, nil).Once()

	resp := call(t, srv, tok, http.MethodGet, "/v1/cart", "")

	var raw struct {
		Cart map[string]interface{} `json:"cart"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, []interface{}{}, raw.Cart["items"])
}

func TestCartRoutesRequireToken(t *testing.T) {
	svc := new(MockCartService)
	srv, _ := newServer(t, svc)

	resp := call(t, srv, "", http.MethodGet, "/v1/cart", "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	svc.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestAddItemHandler(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("AddToCart", mock.Anything, "u1", productA, 2).Return(sampleCart(), nil).Once()

	resp := call(t, srv, tok, http.MethodPost, "/v1/cart/items", `{"productId":"`+productA+`","quantity":2}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decodeCart(t, resp).Cart.Items[0].Quantity)
	svc.AssertExpectations(t)
}

func TestAddItemHandler_Validation(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)

	t.Run("JSON inválido", func(t *testing.T) {
		resp := call(t, srv, tok, http.MethodPost, "/v1/cart/items", `{"productId":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("sem productId", func(t *testing.T) {
		resp := call(t, srv, tok, http.MethodPost, "/v1/cart/items", `{"quantity":1}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("erro de validação do serviço", func(t *testing.T) {
		svc.On("AddToCart", mock.Anything, "u1", productA, 0).
			Return(domain.Cart{}, apperror.NewValidationError("A quantidade deve ser maior ou igual a 1.")).Once()

		resp := call(t, srv, tok, http.MethodPost, "/v1/cart/items", `{"productId":"`+productA+`","quantity":0}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body domain.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "VALIDATION_ERROR", body.Category)
	})
}

func TestUpdateItemHandler_UsesPathProduct(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("UpdateCartItem", mock.Anything, "u1", productA, 10).Return(sampleCart(), nil).Once()

	resp := call(t, srv, tok, http.MethodPut, "/v1/cart/items/"+productA, `{"quantity":10}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestUpdateItemHandler_NotInCart(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("UpdateCartItem", mock.Anything, "u1", productA, 3).
		Return(domain.Cart{}, apperror.NewNotFoundError("Item não está no carrinho.")).Once()

	resp := call(t, srv, tok, http.MethodPut, "/v1/cart/items/"+productA, `{"quantity":3}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveAndClearHandlers(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("RemoveFromCart", mock.Anything, "u1", productA).Return(domain.Cart{ID: "c1"}, nil).Once()
	svc.On("ClearCart", mock.Anything, "u1").Return(domain.Cart{ID: "c1"}, nil).Once()

	assert.Equal(t, http.StatusOK, call(t, srv, tok, http.MethodDelete, "/v1/cart/items/"+productA, "").StatusCode)
	assert.Equal(t, http.StatusOK, call(t, srv, tok, http.MethodDelete, "/v1/cart", "").StatusCode)
	svc.AssertExpectations(t)
}

func TestSyncHandler(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	lines := []domain.CartLine{{ProductID: productA, Quantity: 2}}
	svc.On("SyncLocalCart", mock.Anything, "u1", lines).Return(sampleCart(), nil).Once()

	resp := call(t, srv, tok, http.MethodPost, "/v1/cart/sync", `{"items":[{"productId":"`+productA+`","quantity":2}]}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeCart(t, resp).Success)
	svc.AssertExpectations(t)
}

func TestSyncHandler_InternalError(t *testing.T) {
	svc := new(MockCartService)
	srv, tok := newServer(t, svc)
	svc.On("SyncLocalCart", mock.Anything, "u1", mock.Anything).
		Return(domain.Cart{}, apperror.NewInternalError("Falha ao mesclar carrinho.", nil)).Once()

	resp := call(t, srv, tok, http.MethodPost, "/v1/cart/sync", `{"items":[]}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

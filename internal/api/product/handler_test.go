package product_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"conectaloja/internal/api/product"
	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error) {
	args := m.Called(ctx, page, limit, filters)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, changes domain.Product) (domain.Product, error) {
	args := m.Called(ctx, id, changes)
	return args.Get(0).(domain.Product), args.Error(1)
}

const productID = "9b2f7c1e-8a44-4d0e-b0f5-3c6f2f3e1a77"

func newMux(svc *MockProductService) *http.ServeMux {
	h := product.NewHandler(svc, logger.NewNopLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/products", h.CreateProductHandler)
	mux.HandleFunc("GET /v1/products", h.ListProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProductByIDHandler)
	mux.HandleFunc("PUT /v1/products/{id}", h.UpdateProductHandler)
	return mux
}

func TestCreateProductHandler(t *testing.T) {
	svc := new(MockProductService)
	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.Name == "Café" && p.Price.Equal(decimal.NewFromInt(20))
	})).Return(domain.Product{ID: productID, Name: "Café", Price: decimal.NewFromInt(20), IsActive: true}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"name":"Café","price":"20"}`))
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, productID, got.ID)
	svc.AssertExpectations(t)
}

func TestCreateProductHandler_InvalidPayload(t *testing.T) {
	svc := new(MockProductService)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"name":`))
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestGetProductByIDHandler(t *testing.T) {
	t.Run("encontrado", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("GetProductByID", mock.Anything, productID).Return(domain.Product{ID: productID, Name: "Café"}, nil).Once()

		rec := httptest.NewRecorder()
		newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/"+productID, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("não encontrado", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("GetProductByID", mock.Anything, productID).
			Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado.")).Once()

		rec := httptest.NewRecorder()
		newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/"+productID, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body domain.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "NOT_FOUND", body.Category)
	})
}

func TestListProductsHandler(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetProducts", mock.Anything, 2, 5, map[string]string{"name": "caf", "is_active": "true"}).
		Return([]domain.Product{{ID: productID}}, nil).Once()

	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products?page=2&limit=5&name=caf&is_active=true", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
	svc.AssertExpectations(t)
}

func TestListProductsHandler_Defaults(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetProducts", mock.Anything, 1, 10, map[string]string{}).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListProductsHandler_BadPage(t *testing.T) {
	svc := new(MockProductService)

	rec := httptest.NewRecorder()
	newMux(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products?page=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductHandler(t *testing.T) {
	svc := new(MockProductService)
	svc.On("UpdateProduct", mock.Anything, productID, mock.AnythingOfType("domain.Product")).
		Return(domain.Product{ID: productID, Name: "Café especial"}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/products/"+productID, strings.NewReader(`{"name":"Café especial","price":"25"}`))
	newMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

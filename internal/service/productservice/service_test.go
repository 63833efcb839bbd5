package productservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

// TestGetProducts_Success_NoFilters testa a busca de produtos sem filtros.
func TestGetProducts_Success_NoFilters(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	expectedProducts := []domain.Product{
		{ID: uuid.New().String(), Name: "Product A"},
		{ID: uuid.New().String(), Name: "Product B"},
	}
	mockRepo.On("FindAll", mock.Anything, domain.ProductFilter{Page: 1, Limit: 10}).Return(expectedProducts, nil)

	products, err := svc.GetProducts(context.Background(), 1, 10, nil)

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

// TestGetProducts_Success_WithFilters testa a busca de produtos com filtros.
func TestGetProducts_Success_WithFilters(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	expectedProducts := []domain.Product{{ID: uuid.New().String(), Name: "Filtered Product"}}
	filters := map[string]string{
		"name":      "Filtered",
		"is_active": "true",
	}
	expectedFilter := domain.ProductFilter{Page: 1, Limit: 10, Name: "Filtered", ActiveOnly: true}
	mockRepo.On("FindAll", mock.Anything, expectedFilter).Return(expectedProducts, nil)

	products, err := svc.GetProducts(context.Background(), 1, 10, filters)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

// TestGetProducts_Fail_RepoError testa um erro do repositório.
func TestGetProducts_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	repoError := errors.New("database connection lost")
	mockRepo.On("FindAll", mock.Anything, domain.ProductFilter{Page: 1, Limit: 10}).Return([]domain.Product{}, repoError)

	_, err := svc.GetProducts(context.Background(), 1, 10, nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "Erro Interno: Falha interna ao buscar produtos.")
	assert.Contains(t, err.Error(), "database connection lost")
	mockRepo.AssertExpectations(t)
}

// TestGetProducts_LimitSafeguard testa o limite máximo de itens por página.
func TestGetProducts_LimitSafeguard(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	mockRepo.On("FindAll", mock.Anything, domain.ProductFilter{Page: 1, Limit: 100}).Return([]domain.Product{}, nil)

	_, err := svc.GetProducts(context.Background(), 0, 150, nil)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := productservice.NewService(new(MockProductRepository), logger.NewNopLogger())

	cases := map[string]domain.Product{
		"sem nome":             {Price: decimal.NewFromInt(10)},
		"preço zero":           {Name: "X"},
		"desconto negativo":    {Name: "X", Price: decimal.NewFromInt(10), Discount: decimal.NewFromInt(-1), DiscountType: domain.DiscountFixedValue},
		"percentual acima 100": {Name: "X", Price: decimal.NewFromInt(10), Discount: decimal.NewFromInt(101), DiscountType: domain.DiscountPercentage},
		"tipo desconhecido":    {Name: "X", Price: decimal.NewFromInt(10), DiscountType: "BOGO"},
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), p)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}
}

func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	input := domain.Product{Name: "Widget", Price: decimal.NewFromInt(10), Discount: decimal.NewFromInt(10), DiscountType: domain.DiscountPercentage}
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.ID != "" && p.IsActive && !p.CreatedAt.IsZero()
	})).Return(domain.Product{ID: "p1", Name: "Widget", Price: input.Price, Discount: input.Discount, DiscountType: input.DiscountType, IsActive: true}, nil)

	created, err := svc.CreateProduct(context.Background(), input)

	assert.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.True(t, decimal.NewFromInt(9).Equal(domain.EffectivePrice(created)))
	mockRepo.AssertExpectations(t)
}

func TestGetProductByID_InvalidUUID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())

	_, err := svc.GetProductByID(context.Background(), "nao-e-uuid")

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetProductByID_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())
	id := uuid.NewString()

	mockRepo.On("FindByID", mock.Anything, id).Return(domain.Product{}, apperror.NewNotFoundError("x"))

	_, err := svc.GetProductByID(context.Background(), id)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestUpdateProduct_ReplacesEditableFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewNopLogger())
	id := uuid.NewString()

	mockRepo.On("FindByID", mock.Anything, id).Return(domain.Product{ID: id, Name: "Velho", Price: decimal.NewFromInt(5), IsActive: true}, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.ID == id && p.Name == "Novo" && !p.IsActive
	})).Return(domain.Product{ID: id, Name: "Novo"}, nil)

	updated, err := svc.UpdateProduct(context.Background(), id, domain.Product{Name: "Novo", Price: decimal.NewFromInt(7)})

	assert.NoError(t, err)
	assert.Equal(t, "Novo", updated.Name)
	mockRepo.AssertExpectations(t)
}

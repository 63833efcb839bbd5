package productservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
)

// maxPageLimit é o maior número de produtos devolvido por página.
const maxPageLimit = 100

// ProductRepository define o contrato que este Serviço espera da camada de Persistência.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Service implementa as regras do catálogo.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

var hundred = decimal.NewFromInt(100)

// validate aplica as regras de nome, preço e desconto.
func validate(p domain.Product) error {
	if p.Name == "" {
		return apperror.NewValidationError("Nome é obrigatório para o produto.")
	}
	if !p.Price.IsPositive() {
		return apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if p.Discount.IsNegative() {
		return apperror.NewValidationError("O desconto não pode ser negativo.")
	}
	switch p.DiscountType {
	case domain.DiscountPercentage:
		if p.Discount.GreaterThan(hundred) {
			return apperror.NewValidationError("Desconto percentual deve estar entre 0 e 100.")
		}
	case domain.DiscountFixedValue, domain.DiscountNone:
	default:
		return apperror.NewValidationError(fmt.Sprintf("Tipo de desconto desconhecido: %s.", p.DiscountType))
	}
	return nil
}

// CreateProduct valida e persiste um novo produto ativo.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := validate(product); err != nil {
		return domain.Product{}, err
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsActive = true
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("falha ao salvar produto no repositório: %w", err)
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID})
	return created, nil
}

// GetProductByID busca um produto; o ID precisa ser um UUID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", id))
		}
		return domain.Product{}, err
	}
	return product, nil
}

// GetProducts lista o catálogo. Filtros aceitos: "name" e "is_active".
func (s *Service) GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if limit < 0 {
		limit = 0
	}

	filter := domain.ProductFilter{Page: page, Limit: limit}
	if name, ok := filters["name"]; ok {
		filter.Name = name
	}
	if active, ok := filters["is_active"]; ok {
		if v, err := strconv.ParseBool(active); err == nil {
			filter.ActiveOnly = v
		}
	}

	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao buscar produtos.", err)
		return nil, apperror.NewInternalError(fmt.Sprintf("Falha interna ao buscar produtos. %v", err), err)
	}
	return products, nil
}

// UpdateProduct substitui os campos editáveis do produto.
func (s *Service) UpdateProduct(ctx context.Context, id string, changes domain.Product) (domain.Product, error) {
	current, err := s.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := validate(changes); err != nil {
		return domain.Product{}, err
	}

	current.Name = changes.Name
	current.Description = changes.Description
	current.Price = changes.Price
	current.Discount = changes.Discount
	current.DiscountType = changes.DiscountType
	current.Image = changes.Image
	current.IsActive = changes.IsActive
	current.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": id})
	return updated, nil
}

package cartservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
)

// CartRepository é o contrato de persistência do carrinho (implementado por cartrepo).
type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error)
	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
	MergeItems(ctx context.Context, cartID string, lines []domain.CartLine) error
}

// ProductFinder busca produtos do catálogo (implementado por productrepo).
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

// Service aplica as regras do carrinho autoritativo. Toda mutação devolve o carrinho completo.
type Service struct {
	carts    CartRepository
	products ProductFinder
	logger   logger.Logger
}

// NewService cria o serviço de carrinho.
func NewService(carts CartRepository, products ProductFinder, log logger.Logger) *Service {
	return &Service{carts: carts, products: products, logger: log}
}

// load devolve o carrinho do usuário com os itens atuais.
func (s *Service) load(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items
	return cart, nil
}

// GetCart devolve o carrinho do usuário, criando-o vazio se ainda não existir.
func (s *Service) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.load(ctx, cart)
}

func validProductID(productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return nil
}

// activeProduct garante que o produto existe e está à venda.
func (s *Service) activeProduct(ctx context.Context, productID string) (domain.Product, error) {
	if err := validProductID(productID); err != nil {
		return domain.Product{}, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if !product.IsActive {
		return domain.Product{}, apperror.NewValidationError(fmt.Sprintf("Produto %s não está disponível.", productID))
	}
	return product, nil
}

// AddToCart soma quantity ao item do produto.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}
	if _, err := s.activeProduct(ctx, productID); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.carts.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Debug("Item adicionado ao carrinho.", map[string]interface{}{"user_id": userID, "product_id": productID, "quantity": quantity})
	return s.load(ctx, cart)
}

// UpdateCartItem define a quantidade absoluta. Zero remove o item; negativo é inválido.
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	if err := validProductID(productID); err != nil {
		return domain.Cart{}, err
	}
	if quantity < 0 {
		return domain.Cart{}, apperror.NewValidationError("A quantidade não pode ser negativa.")
	}
	if quantity == 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return domain.Cart{}, err
	}
	return s.load(ctx, cart)
}

// RemoveFromCart remove o item do produto; remover um item ausente não é erro.
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID string) (domain.Cart, error) {
	if err := validProductID(productID); err != nil {
		return domain.Cart{}, err
	}
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return domain.Cart{}, err
	}
	return s.load(ctx, cart)
}

// ClearCart esvazia o carrinho.
func (s *Service) ClearCart(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return domain.Cart{}, err
	}
	cart.Items = []domain.CartItem{}
	return cart, nil
}

// SyncLocalCart mescla o carrinho anônimo do cliente ao do servidor somando quantidades.
// Linhas com quantidade não positiva ou produto desconhecido/inativo são descartadas.
func (s *Service) SyncLocalCart(ctx context.Context, userID string, lines []domain.CartLine) (domain.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	merged := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			s.logger.Warn("Linha do carrinho local descartada: quantidade inválida.", map[string]interface{}{"product_id": line.ProductID, "quantity": line.Quantity})
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		if _, err := s.activeProduct(ctx, line.ProductID); err != nil {
			if isInternal(err) {
				return domain.Cart{}, err
			}
			s.logger.Warn("Linha do carrinho local descartada: produto indisponível.", map[string]interface{}{"product_id": line.ProductID, "reason": err.Error()})
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	if err := s.carts.MergeItems(ctx, cart.ID, merged); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Info("Carrinho local sincronizado.", map[string]interface{}{"user_id": userID, "received": len(lines), "merged": len(merged)})
	return s.load(ctx, cart)
}

func isInternal(err error) bool {
	var internal *apperror.InternalError
	return errors.As(err, &internal)
}

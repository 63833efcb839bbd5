// Package cartsync liga o CartStore ao serviço de carrinho do servidor: mesclagem no
// login, atualizações otimistas e debounce por produto das alterações de quantidade.
package cartsync

import (
	"context"
	"fmt"

	"conectaloja/internal/domain"
)

// CartService é o contrato consumido do serviço de carrinho remoto.
// Cada operação devolve o carrinho autoritativo ou um erro.
type CartService interface {
	GetCart(ctx context.Context) (domain.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (domain.Cart, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error)
	ClearCart(ctx context.Context) error
	SyncLocalCart(ctx context.Context, lines []domain.CartLine) (domain.Cart, error)
}

// LocalStorage é o adaptador de persistência local (implementado por *cartstorage.Adapter).
type LocalStorage interface {
	Save(ctx context.Context, items []domain.CartItem) error
	Load(ctx context.Context) []domain.CartItem
	Clear(ctx context.Context) error
}

// SyncError descreve a falha de uma chamada ao servidor feita pelo Engine.
type SyncError struct {
	Op        string
	ProductID string
	Err       error
}

func (e *SyncError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("cartsync %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cartsync %s (produto %s): %v", e.Op, e.ProductID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem é uma linha do carrinho: um produto e sua quantidade (sempre >= 1).
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartLine é a forma enxuta de um item, usada na mesclagem do carrinho local no login.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart é o carrinho autoritativo de um usuário, mantido no servidor.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalItems soma as quantidades de todos os itens.
func TotalItems(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice soma EffectivePrice(produto) * quantidade de todos os itens.
func TotalPrice(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(EffectivePrice(item.Product).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalItems do carrinho do servidor.
func (c Cart) TotalItems() int { return TotalItems(c.Items) }

// TotalPrice do carrinho do servidor.
func (c Cart) TotalPrice() decimal.Decimal { return TotalPrice(c.Items) }

// LinesFromItems converte itens completos no formato enxuto aceito pelo endpoint de sincronização.
func LinesFromItems(items []CartItem) []CartLine {
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return lines
}

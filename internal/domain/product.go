package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType indica como o campo Discount de um Produto deve ser aplicado.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"  // Discount é um percentual (0-100) do preço
	DiscountFixedValue DiscountType = "FIXED_VALUE" // Discount é abatido diretamente do preço
	DiscountNone       DiscountType = ""
)

// Product representa o item do catálogo que pode ser colocado no carrinho.
// @Description Produto do catálogo com preço e desconto opcional.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountType DiscountType    `json:"discountType,omitempty"`
	Image        string          `json:"image,omitempty"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice aplica o desconto do produto ao preço.
// Percentual: price - price*discount/100. Valor fixo: price - discount.
// O resultado nunca é negativo; descontos não positivos ou tipos desconhecidos não alteram o preço.
func EffectivePrice(p Product) decimal.Decimal {
	if !p.Discount.IsPositive() {
		return p.Price
	}

	var price decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		price = p.Price.Sub(p.Price.Mul(p.Discount).Div(hundred))
	case DiscountFixedValue:
		price = p.Price.Sub(p.Discount)
	default:
		return p.Price
	}

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	Page       int
	Limit      int
	Name       string
	ActiveOnly bool
}

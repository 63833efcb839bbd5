// Package cartstore mantém o estado do carrinho do lado do cliente e aplica as
// transições de estado por meio de um reducer puro.
package cartstore

import (
	"github.com/shopspring/decimal"

	"conectaloja/internal/domain"
)

// Mode é o modo de sessão do carrinho. Substitui as três flags
// (isLoggedIn, isServerCartLoaded, isSyncing) por uma variante explícita,
// tornando combinações ilegais irrepresentáveis.
type Mode int

const (
	// ModeAnonymous: sem credencial. Tudo é local.
	ModeAnonymous Mode = iota
	// ModeSyncing: credencial detectada, mesclagem com o servidor em andamento.
	ModeSyncing
	// ModeLocal: autenticado, mas o carrinho do servidor ainda não foi carregado
	// (mesclagem falhou). O carrinho local continua valendo.
	ModeLocal
	// ModeServerBacked: autenticado e o servidor é a fonte da verdade.
	ModeServerBacked
)

func (m Mode) String() string {
	switch m {
	case ModeAnonymous:
		return "anonymous"
	case ModeSyncing:
		return "syncing"
	case ModeLocal:
		return "local"
	case ModeServerBacked:
		return "server-backed"
	default:
		return "unknown"
	}
}

// State é o estado completo do carrinho. Items é único por ID de produto
// e preserva a ordem da primeira inclusão.
type State struct {
	Items []domain.CartItem
	Mode  Mode
}

// IsLoggedIn indica a presença de uma credencial válida.
func (s State) IsLoggedIn() bool { return s.Mode != ModeAnonymous }

// IsServerCartLoaded indica que o carrinho autoritativo já foi carregado desde o login.
func (s State) IsServerCartLoaded() bool { return s.Mode == ModeServerBacked }

// IsSyncing indica uma mesclagem de login em andamento.
func (s State) IsSyncing() bool { return s.Mode == ModeSyncing }

// ShouldPersistLocally é verdadeiro enquanto o carrinho não é autoritativo do servidor:
// !isLoggedIn || !isServerCartLoaded.
func (s State) ShouldPersistLocally() bool { return s.Mode != ModeServerBacked }

// TotalItems é a soma das quantidades.
func (s State) TotalItems() int { return domain.TotalItems(s.Items) }

// TotalPrice é a soma de EffectivePrice(produto) * quantidade.
func (s State) TotalPrice() decimal.Decimal { return domain.TotalPrice(s.Items) }

// Quantity devolve a quantidade atual de um produto e se ele está no carrinho.
func (s State) Quantity(productID string) (int, bool) {
	if i := indexOf(s.Items, productID); i >= 0 {
		return s.Items[i].Quantity, true
	}
	return 0, false
}

func indexOf(items []domain.CartItem, productID string) int {
	for i, item := range items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// cloneItems copia o slice para que estados anteriores nunca sejam alterados.
func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

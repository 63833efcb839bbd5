package cartstore

import "conectaloja/internal/domain"

// Action é uma transição discreta aplicada pelo Reduce.
type Action interface {
	isAction()
}

// AddItem soma Quantity ao item existente ou acrescenta um novo item no fim.
// A quantidade não é validada aqui; quem despacha garante Quantity >= 1.
type AddItem struct {
	Product  domain.Product
	Quantity int
}

// RemoveItem remove o item; sem efeito se o produto não estiver no carrinho.
type RemoveItem struct {
	ProductID string
}

// UpdateQuantity substitui a quantidade; Quantity <= 0 equivale a RemoveItem.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart esvazia os itens.
type ClearCart struct{}

// LoadCart substitui os itens (hidratação do armazenamento local).
type LoadCart struct {
	Items []domain.CartItem
}

// SyncWithServer substitui os itens pela lista autoritativa do servidor.
type SyncWithServer struct {
	Items []domain.CartItem
}

// SetUserLoggedIn marca a sessão como autenticada.
type SetUserLoggedIn struct {
	Syncing bool
}

// SetUserLoggedOut volta ao carrinho anônimo vazio.
type SetUserLoggedOut struct{}

// SyncFailed encerra uma mesclagem de login que falhou: isSyncing volta a false e o
// carrinho local é mantido. Sem efeito fora de ModeSyncing (ex.: logout no meio da mesclagem).
type SyncFailed struct{}

func (AddItem) isAction()          {}
func (RemoveItem) isAction()       {}
func (UpdateQuantity) isAction()   {}
func (ClearCart) isAction()        {}
func (LoadCart) isAction()         {}
func (SyncWithServer) isAction()   {}
func (SetUserLoggedIn) isAction()  {}
func (SetUserLoggedOut) isAction() {}
func (SyncFailed) isAction()       {}

// Reduce aplica action sobre state e devolve o novo estado. É uma função pura e total:
// não faz I/O, não falha e nunca altera o slice de itens de state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		items := cloneItems(state.Items)
		if i := indexOf(items, a.Product.ID); i >= 0 {
			items[i].Quantity += a.Quantity
		} else {
			items = append(items, domain.CartItem{Product: a.Product, Quantity: a.Quantity})
		}
		state.Items = items

	case RemoveItem:
		state.Items = without(state.Items, a.ProductID)

	case UpdateQuantity:
		if a.Quantity <= 0 {
			state.Items = without(state.Items, a.ProductID)
			break
		}
		if i := indexOf(state.Items, a.ProductID); i >= 0 {
			items := cloneItems(state.Items)
			items[i].Quantity = a.Quantity
			state.Items = items
		}

	case ClearCart:
		state.Items = []domain.CartItem{}

	case LoadCart:
		state.Items = normalize(a.Items)

	case SyncWithServer:
		// Resposta tardia depois do logout: o carrinho anônimo não pode ser ressuscitado.
		if state.Mode == ModeAnonymous {
			break
		}
		state.Items = normalize(a.Items)
		state.Mode = ModeServerBacked

	case SetUserLoggedIn:
		if a.Syncing {
			state.Mode = ModeSyncing
		} else {
			state.Mode = ModeLocal
		}

	case SetUserLoggedOut:
		state.Items = []domain.CartItem{}
		state.Mode = ModeAnonymous

	case SyncFailed:
		if state.Mode == ModeSyncing {
			state.Mode = ModeLocal
		}
	}

	return state
}

func without(items []domain.CartItem, productID string) []domain.CartItem {
	i := indexOf(items, productID)
	if i < 0 {
		return items
	}
	out := make([]domain.CartItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// normalize copia uma lista vinda de fora garantindo as invariantes do carrinho:
// sem quantidades <= 0 e sem produtos duplicados (duplicatas têm as quantidades somadas).
func normalize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, item.Product.ID); i >= 0 {
			out[i].Quantity += item.Quantity
			continue
		}
		out = append(out, item)
	}
	return out
}

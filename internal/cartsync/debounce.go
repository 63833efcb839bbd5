package cartsync

import (
	"time"

	"conectaloja/internal/domain"
)

// pendingUpdate é o timer de uma atualização de quantidade ainda não enviada.
// Existe no máximo um por produto.
type pendingUpdate struct {
	productID string
	quantity  int
	timer     *time.Timer
}

// schedule substitui o timer pendente do produto por um novo, levando a quantidade pedida.
func (e *Engine) schedule(productID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if prev, ok := e.pending[productID]; ok {
		prev.timer.Stop()
	}

	p := &pendingUpdate{productID: productID, quantity: quantity}
	p.timer = time.AfterFunc(e.opts.Debounce, func() { e.fire(p) })
	e.pending[productID] = p
}

// fire é o callback do timer. Um timer já substituído ou cancelado que chegou
// a disparar não encontra a si mesmo no mapa e não faz nada.
func (e *Engine) fire(p *pendingUpdate) {
	e.mu.Lock()
	if e.closed || e.pending[p.productID] != p {
		e.mu.Unlock()
		return
	}
	delete(e.pending, p.productID)
	quantity := p.quantity
	e.inflight[p.productID] = quantity
	e.mu.Unlock()

	_ = e.sendUpdate(e.ctx, p.productID, quantity)
}

// retarget troca a quantidade de uma atualização ainda pendente sem reiniciar o timer.
func (e *Engine) retarget(productID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.pending[productID]; ok {
		p.quantity = quantity
	}
}

// cancelPending descarta o timer pendente de um produto.
func (e *Engine) cancelPending(productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.pending[productID]; ok {
		p.timer.Stop()
		delete(e.pending, productID)
	}
	delete(e.inflight, productID)
}

// cancelAll descarta todos os timers pendentes.
func (e *Engine) cancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, p := range e.pending {
		p.timer.Stop()
		delete(e.pending, id)
	}
	for id := range e.inflight {
		delete(e.inflight, id)
	}
}

// settle encerra o envio de uma quantidade, a menos que outra já a tenha substituído.
func (e *Engine) settle(productID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if q, ok := e.inflight[productID]; ok && q == quantity {
		delete(e.inflight, productID)
	}
}

// withPending sobrepõe às linhas do servidor as quantidades que ainda aguardam envio
// ou confirmação. A resposta de um produto não desfaz a alteração otimista de outro.
func (e *Engine) withPending(items []domain.CartItem) []domain.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 && len(e.inflight) == 0 {
		return items
	}
	merged := make([]domain.CartItem, len(items))
	for i, it := range items {
		if p, ok := e.pending[it.Product.ID]; ok {
			it.Quantity = p.quantity
		} else if q, ok := e.inflight[it.Product.ID]; ok {
			it.Quantity = q
		}
		merged[i] = it
	}
	return merged
}

// Package cartstorage espelha os itens do carrinho em um slot chave-valor durável
// enquanto o servidor ainda não é a fonte da verdade.
package cartstorage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
)

// CartKey é a chave fixa do slot do carrinho local.
const CartKey = "conecta-loja:cart"

// snapshot é o formato gravado no slot: { items, timestamp }.
type snapshot struct {
	Items     []domain.CartItem `json:"items"`
	Timestamp string            `json:"timestamp"`
}

// Adapter implementa save/load/clear sobre qualquer cache.Client
// (cache.FileClient no cliente, cache.RedisClient em um BFF).
type Adapter struct {
	backend cache.Client
	logger  logger.Logger
	ttl     time.Duration
	now     func() time.Time
}

// Option configura o Adapter.
type Option func(*Adapter)

// WithTTL define a expiração do slot (0 = sem expiração).
func WithTTL(ttl time.Duration) Option {
	return func(a *Adapter) { a.ttl = ttl }
}

// WithClock substitui o relógio usado no timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// NewAdapter cria o Adapter.
func NewAdapter(backend cache.Client, log logger.Logger, opts ...Option) *Adapter {
	a := &Adapter{backend: backend, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save grava os itens com o timestamp atual (ISO 8601).
func (a *Adapter) Save(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	payload, err := json.Marshal(snapshot{Items: items, Timestamp: a.now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	if err := a.backend.Set(ctx, CartKey, string(payload), a.ttl); err != nil {
		a.logger.Error("Falha ao salvar carrinho no armazenamento local.", err)
		return err
	}
	return nil
}

// Load lê o slot. Ausência ou dados malformados resultam em carrinho vazio;
// falhas são registradas em log e nunca devolvidas.
func (a *Adapter) Load(ctx context.Context) []domain.CartItem {
	raw, err := a.backend.Get(ctx, CartKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return []domain.CartItem{}
	}
	if err != nil {
		a.logger.Error("Falha ao ler carrinho do armazenamento local.", err)
		return []domain.CartItem{}
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		a.logger.Error("Carrinho local malformado, usando carrinho vazio.", err)
		return []domain.CartItem{}
	}

	items := make([]domain.CartItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		if item.Product.ID == "" || item.Quantity <= 0 {
			a.logger.Warn("Item inválido descartado do carrinho local.", map[string]interface{}{
				"product_id": item.Product.ID,
				"quantity":   item.Quantity,
			})
			continue
		}
		items = append(items, item)
	}
	return items
}

// Clear remove o slot.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.backend.Delete(ctx, CartKey); err != nil {
		a.logger.Error("Falha ao limpar carrinho do armazenamento local.", err)
		return err
	}
	return nil
}

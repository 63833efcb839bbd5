package cartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
)

// TokenKey é a chave do slot que guarda a credencial da sessão.
const TokenKey = "conecta-loja:token"

// CredentialSource é a fonte externa do estado de autenticação.
// Subscribe devolve a função que cancela a inscrição.
type CredentialSource interface {
	Current(ctx context.Context) string
	Subscribe(fn func(token string)) func()
}

// PollingCredentialSource observa o slot de credencial em um cache.Client por polling
// e notifica os inscritos sempre que o valor muda.
type PollingCredentialSource struct {
	backend  cache.Client
	key      string
	interval time.Duration
	logger   logger.Logger

	mu          sync.Mutex
	subscribers map[int]func(string)
	nextID      int
	last        string
	stop        chan struct{}
	done        chan struct{}
}

// NewPollingCredentialSource cria a fonte; o polling só roda enquanto houver inscritos.
func NewPollingCredentialSource(backend cache.Client, key string, interval time.Duration, log logger.Logger) *PollingCredentialSource {
	return &PollingCredentialSource{
		backend:     backend,
		key:         key,
		interval:    interval,
		logger:      log,
		subscribers: make(map[int]func(string)),
	}
}

// Current lê a credencial atual; ausência (ou falha de leitura) é "".
func (p *PollingCredentialSource) Current(ctx context.Context) string {
	token, err := p.backend.Get(ctx, p.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return ""
	}
	if err != nil {
		p.logger.Error("Falha ao ler a credencial da sessão.", err)
		return ""
	}
	return token
}

// Subscribe registra fn. O primeiro inscrito inicia o polling, tomando o valor
// atual como referência (ele não gera notificação).
func (p *PollingCredentialSource) Subscribe(fn func(token string)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	if p.stop == nil {
		p.last = p.Current(context.Background())
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.loop(p.stop, p.done)
	}
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { p.unsubscribe(id) })
	}
}

func (p *PollingCredentialSource) unsubscribe(id int) {
	p.mu.Lock()
	delete(p.subscribers, id)
	if len(p.subscribers) > 0 || p.stop == nil {
		p.mu.Unlock()
		return
	}
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	close(stop)
	<-done
}

func (p *PollingCredentialSource) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Poll(context.Background())
		}
	}
}

// Poll faz uma leitura do slot e notifica os inscritos se o valor mudou.
func (p *PollingCredentialSource) Poll(ctx context.Context) {
	token := p.Current(ctx)

	p.mu.Lock()
	if token == p.last {
		p.mu.Unlock()
		return
	}
	p.last = token
	subscribers := make([]func(string), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subscribers = append(subscribers, fn)
	}
	p.mu.Unlock()

	p.logger.Debug("Mudança na credencial da sessão detectada.", map[string]interface{}{"present": token != ""})
	for _, fn := range subscribers {
		fn(token)
	}
}

package cartstore

import (
	"sync"

	"conectaloja/internal/domain"
)

// Listener é notificado após cada Dispatch com o estado anterior e o novo.
type Listener func(prev, next State)

// Store é o único escritor do State. É seguro para uso concorrente, já que
// os timers de debounce do Sync Engine disparam em outras goroutines.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore cria um Store com carrinho vazio e sessão anônima.
func NewStore() *Store {
	return &Store{
		state:     State{Items: []domain.CartItem{}, Mode: ModeAnonymous},
		listeners: make(map[int]Listener),
	}
}

// State devolve uma cópia do estado atual.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Items = cloneItems(s.state.Items)
	return st
}

// Dispatch aplica a action e notifica os listeners fora do lock.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return next
}

// Subscribe registra um listener e devolve a função que o remove.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

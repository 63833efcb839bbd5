package cartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"conectaloja/internal/cartstore"
	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
)

// DefaultDebounce é o atraso padrão entre a última alteração de quantidade e a chamada ao servidor.
const DefaultDebounce = 300 * time.Millisecond

// Options configura o Engine.
type Options struct {
	// Debounce por produto das atualizações de quantidade. Zero usa DefaultDebounce.
	Debounce time.Duration
	// RequestTimeout limita as chamadas disparadas pelos timers de debounce. Zero = sem limite extra.
	RequestTimeout time.Duration
	// OnSyncError recebe as falhas das atualizações com debounce, que não têm chamador para quem retornar.
	OnSyncError func(err *SyncError)
}

// Engine é o Sync Engine: decide entre o caminho local e o caminho servidor conforme
// o modo da sessão, aplica atualizações otimistas e mantém o mapa de timers pendentes.
type Engine struct {
	store   *cartstore.Store
	storage LocalStorage
	service CartService
	creds   CredentialSource
	logger  logger.Logger
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  map[string]*pendingUpdate
	inflight map[string]int
	unsubs   []func()
	token   string
	closed  bool

	loginMu sync.Mutex
	// sendMu mantém as atualizações em ordem: a resposta de uma é aplicada antes do envio da próxima.
	sendMu sync.Mutex
}

// NewEngine monta o Engine. Nada acontece até Start.
func NewEngine(store *cartstore.Store, storage LocalStorage, service CartService, creds CredentialSource, log logger.Logger, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:   store,
		storage: storage,
		service: service,
		creds:   creds,
		logger:  log,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		pending:  make(map[string]*pendingUpdate),
		inflight: make(map[string]int),
	}
}

// Store expõe o CartStore para leitura do estado e dos totais.
func (e *Engine) Store() *cartstore.Store { return e.store }

// Start hidrata o carrinho a partir do armazenamento local, passa a espelhar as alterações
// enquanto o servidor não é autoritativo e se inscreve na fonte de credenciais.
// Se já existir uma credencial, executa a transição de login.
func (e *Engine) Start(ctx context.Context) error {
	if items := e.storage.Load(ctx); len(items) > 0 {
		e.store.Dispatch(cartstore.LoadCart{Items: items})
		e.logger.Debug("Carrinho local hidratado.", map[string]interface{}{"items": len(items)})
	}

	unsubStore := e.store.Subscribe(e.mirror)

	token := e.creds.Current(ctx)
	e.mu.Lock()
	e.token = token
	e.unsubs = append(e.unsubs, unsubStore)
	e.mu.Unlock()

	unsubCreds := e.creds.Subscribe(e.onCredential)
	e.mu.Lock()
	e.unsubs = append(e.unsubs, unsubCreds)
	e.mu.Unlock()

	if token != "" {
		return e.HandleLogin(ctx)
	}
	return nil
}

// mirror grava os itens no slot local a cada alteração, exceto em ModeServerBacked.
func (e *Engine) mirror(prev, next cartstore.State) {
	if !next.ShouldPersistLocally() || sameItems(prev.Items, next.Items) {
		return
	}
	if err := e.storage.Save(e.ctx, next.Items); err != nil {
		e.logger.Warn("Carrinho não espelhado no armazenamento local.", map[string]interface{}{"error": err.Error()})
	}
}

// onCredential reage apenas às transições de presença da credencial.
func (e *Engine) onCredential(token string) {
	e.mu.Lock()
	prev := e.token
	e.token = token
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return
	}

	switch {
	case prev == "" && token != "":
		if err := e.HandleLogin(e.ctx); err != nil {
			e.logger.Warn("Login detectado, mas a mesclagem com o servidor falhou.", map[string]interface{}{"error": err.Error()})
		}
	case prev != "" && token == "":
		if err := e.HandleLogout(e.ctx); err != nil {
			e.logger.Warn("Logout detectado, mas o armazenamento local não foi limpo.", map[string]interface{}{"error": err.Error()})
		}
	}
}

// HandleLogin mescla o carrinho local com o do servidor. Com itens locais chama
// SyncLocalCart; com carrinho local vazio apenas busca o carrinho do servidor.
// Em caso de falha o carrinho local é mantido e o erro é devolvido.
func (e *Engine) HandleLogin(ctx context.Context) error {
	e.loginMu.Lock()
	defer e.loginMu.Unlock()

	if e.store.State().IsServerCartLoaded() {
		return nil
	}

	local := e.store.Dispatch(cartstore.SetUserLoggedIn{Syncing: true}).Items
	e.logger.Info("Sincronizando carrinho com o servidor após login.", map[string]interface{}{"local_items": len(local)})

	var (
		cart domain.Cart
		err  error
		op   string
	)
	if len(local) > 0 {
		op = "sync"
		cart, err = e.service.SyncLocalCart(ctx, domain.LinesFromItems(local))
	} else {
		op = "get"
		cart, err = e.service.GetCart(ctx)
	}
	if err != nil {
		e.store.Dispatch(cartstore.SyncFailed{})
		e.logger.Error("Falha ao sincronizar carrinho no login. Mantendo carrinho local.", err)
		return &SyncError{Op: op, Err: err}
	}

	e.store.Dispatch(cartstore.SyncWithServer{Items: cart.Items})
	if err := e.storage.Clear(ctx); err != nil {
		e.logger.Warn("Carrinho sincronizado, mas o armazenamento local não foi limpo.", map[string]interface{}{"error": err.Error()})
	}
	e.logger.Info("Carrinho sincronizado com o servidor.", map[string]interface{}{"items": len(cart.Items)})
	return nil
}

// HandleLogout descarta o carrinho da sessão, cancela os timers pendentes e limpa o slot local.
func (e *Engine) HandleLogout(ctx context.Context) error {
	e.cancelAll()
	e.store.Dispatch(cartstore.SetUserLoggedOut{})
	e.logger.Info("Sessão encerrada. Carrinho local descartado.", nil)
	return e.storage.Clear(ctx)
}

// AddItem aplica a inclusão localmente e, se autenticado, replica no servidor.
// Falhas do servidor são registradas e engolidas: o resultado local permanece.
func (e *Engine) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if product.ID == "" {
		return apperror.NewValidationError("O produto precisa de um ID.")
	}
	if quantity < 1 {
		return apperror.NewValidationError("A quantidade deve ser maior ou igual a 1.")
	}

	state := e.store.Dispatch(cartstore.AddItem{Product: product, Quantity: quantity})
	if !state.IsLoggedIn() {
		return nil
	}
	if total, ok := state.Quantity(product.ID); ok {
		e.retarget(product.ID, total)
	}

	cart, err := e.service.AddToCart(ctx, product.ID, quantity)
	if err != nil {
		e.logger.Warn("Falha ao adicionar item no servidor. Mantendo carrinho local.", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return nil
	}
	e.store.Dispatch(cartstore.SyncWithServer{Items: e.withPending(cart.Items)})
	return nil
}

// RemoveItem cancela a atualização pendente do produto, remove localmente e, se autenticado,
// replica no servidor. Falhas do servidor são registradas e engolidas.
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	e.cancelPending(productID)

	state := e.store.Dispatch(cartstore.RemoveItem{ProductID: productID})
	if !state.IsLoggedIn() {
		return nil
	}

	cart, err := e.service.RemoveFromCart(ctx, productID)
	if err != nil {
		e.logger.Warn("Falha ao remover item no servidor. Mantendo carrinho local.", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil
	}
	e.store.Dispatch(cartstore.SyncWithServer{Items: e.withPending(cart.Items)})
	return nil
}

// UpdateQuantity aplica a nova quantidade imediatamente e agenda a chamada ao servidor
// com debounce por produto. Quantidade <= 0 equivale a RemoveItem.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, productID)
	}

	state := e.store.Dispatch(cartstore.UpdateQuantity{ProductID: productID, Quantity: quantity})
	applied, ok := state.Quantity(productID)
	if !ok {
		return nil
	}
	if state.IsLoggedIn() {
		e.schedule(productID, applied)
	}
	return nil
}

// ClearCart esvazia o carrinho localmente, cancela todas as atualizações pendentes e,
// se autenticado, limpa o carrinho do servidor. A falha do servidor é devolvida;
// o carrinho local continua vazio.
func (e *Engine) ClearCart(ctx context.Context) error {
	e.cancelAll()

	state := e.store.Dispatch(cartstore.ClearCart{})
	if !state.IsLoggedIn() {
		return nil
	}

	if err := e.service.ClearCart(ctx); err != nil {
		e.logger.Error("Falha ao limpar carrinho no servidor.", err)
		return &SyncError{Op: "clear", Err: err}
	}
	e.store.Dispatch(cartstore.SyncWithServer{Items: []domain.CartItem{}})
	return nil
}

// Flush envia imediatamente todas as atualizações pendentes.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	updates := make([]*pendingUpdate, 0, len(e.pending))
	for _, p := range e.pending {
		p.timer.Stop()
		e.inflight[p.productID] = p.quantity
		updates = append(updates, p)
	}
	e.pending = make(map[string]*pendingUpdate)
	e.mu.Unlock()

	var errs []error
	for _, p := range updates {
		if err := e.sendUpdate(ctx, p.productID, p.quantity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close cancela todos os timers pendentes e encerra as inscrições.
// Chamadas já enviadas ao servidor não são canceladas.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	e.cancelAll()
	for _, unsub := range unsubs {
		unsub()
	}
	e.cancel()
}

// Pending informa quantas atualizações com debounce aguardam envio.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// sendUpdate envia a última quantidade pedida para o produto.
func (e *Engine) sendUpdate(ctx context.Context, productID string, quantity int) error {
	err := e.sendInOrder(ctx, productID, quantity)
	if err == nil {
		return nil
	}
	syncErr := &SyncError{Op: "update", ProductID: productID, Err: err}
	e.logger.Error("Falha ao atualizar quantidade no servidor.", syncErr)
	if e.opts.OnSyncError != nil {
		e.opts.OnSyncError(syncErr)
	}
	return syncErr
}

func (e *Engine) sendInOrder(ctx context.Context, productID string, quantity int) error {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	defer e.settle(productID, quantity)

	if !e.store.State().IsLoggedIn() {
		return nil
	}

	if e.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RequestTimeout)
		defer cancel()
	}

	cart, err := e.service.UpdateCartItem(ctx, productID, quantity)
	if err != nil {
		return err
	}
	e.store.Dispatch(cartstore.SyncWithServer{Items: e.withPending(cart.Items)})
	return nil
}

// sameItems compara produtos e quantidades na ordem.
func sameItems(a, b []domain.CartItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Product.ID != b[i].Product.ID || a[i].Quantity != b[i].Quantity {
			return false
		}
	}
	return true
}

package cart

import (
	"context"
	"net/http"

	"conectaloja/internal/api/respond"
	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/middleware"
)

// CartService define o contrato que o Handler espera da camada de Serviço.
type CartService interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, userID, productID string) (domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (domain.Cart, error)
	SyncLocalCart(ctx context.Context, userID string, lines []domain.CartLine) (domain.Cart, error)
}

// AddItemRequest é o payload de POST /v1/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest é o payload de PUT /v1/cart/items/{productId}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// SyncRequest é o payload de POST /v1/cart/sync.
type SyncRequest struct {
	Items []domain.CartLine `json:"items"`
}

// Handler agrupa os handlers de carrinho. Todas as rotas exigem autenticação.
type Handler struct {
	Service CartService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CartService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// handleServiceResponse responde { success:true, cart } ou o envelope de erro.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, cart domain.Cart, err error) {
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	respond.JSON(w, h.Logger, http.StatusOK, domain.CartResponse{Success: true, Cart: cart})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return "", false
	}
	return claims.UserID, true
}

// GetCartHandler lida com a requisição GET /v1/cart.
// @Summary Carrinho do usuário autenticado
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CartResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /cart [get]
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.Service.GetCart(r.Context(), userID)
	h.handleServiceResponse(w, r, cart, err)
}

// AddItemHandler lida com a requisição POST /v1/cart/items.
// @Summary Soma uma quantidade ao item do produto
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body AddItemRequest true "Produto e quantidade (>= 1)"
// @Success 200 {object} domain.CartResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /cart/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req AddItemRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	if req.ProductID == "" {
		respond.Error(w, r, h.Logger, apperror.NewValidationError("productId é obrigatório."))
		return
	}
	cart, err := h.Service.AddToCart(r.Context(), userID, req.ProductID, req.Quantity)
	h.handleServiceResponse(w, r, cart, err)
}

// UpdateItemHandler lida com a requisição PUT /v1/cart/items/{productId}.
// @Summary Define a quantidade absoluta de um item (0 remove)
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "ID do produto"
// @Param item body UpdateItemRequest true "Nova quantidade"
// @Success 200 {object} domain.CartResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /cart/items/{productId} [put]
func (h *Handler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	cart, err := h.Service.UpdateCartItem(r.Context(), userID, r.PathValue("productId"), req.Quantity)
	h.handleServiceResponse(w, r, cart, err)
}

// RemoveItemHandler lida com a requisição DELETE /v1/cart/items/{productId}.
// @Summary Remove o item do produto
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param productId path string true "ID do produto"
// @Success 200 {object} domain.CartResponse
// @Router /cart/items/{productId} [delete]
func (h *Handler) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.Service.RemoveFromCart(r.Context(), userID, r.PathValue("productId"))
	h.handleServiceResponse(w, r, cart, err)
}

// ClearCartHandler lida com a requisição DELETE /v1/cart.
// @Summary Esvazia o carrinho
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CartResponse
// @Router /cart [delete]
func (h *Handler) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.Service.ClearCart(r.Context(), userID)
	h.handleServiceResponse(w, r, cart, err)
}

// SyncHandler lida com a requisição POST /v1/cart/sync.
// @Summary Mescla o carrinho anônimo do cliente ao do servidor
// @Description Quantidades de um mesmo produto são somadas. Produtos desconhecidos são ignorados.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cart body SyncRequest true "Itens do carrinho local"
// @Success 200 {object} domain.CartResponse
// @Failure 400 {object} domain.ErrorResponse
// @Router /cart/sync [post]
func (h *Handler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req SyncRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	cart, err := h.Service.SyncLocalCart(r.Context(), userID, req.Items)
	h.handleServiceResponse(w, r, cart, err)
}

package product

import (
	"context"
	"net/http"
	"strconv"

	"conectaloja/internal/api/respond"
	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, changes domain.Product) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err != nil {
		// 5xx já são registrados com a causa raiz por respond.Error.
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, successStatus, data)
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Description Restrito a admin e employee.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.Product true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Criação de produto solicitada.", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var p domain.Product
	if err := respond.Decode(r, &p); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	created, err := h.Service.CreateProduct(ctx, p)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Busca um produto pelo ID
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	p, err := h.Service.GetProductByID(r.Context(), productID)
	h.handleServiceResponse(w, r, p, err, http.StatusOK)
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista o catálogo
// @Tags products
// @Produce json
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 10, máximo 100)"
// @Param name query string false "Filtro por nome"
// @Param is_active query bool false "Apenas produtos ativos"
// @Success 200 {array} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Parâmetro page inválido."), http.StatusOK)
		return
	}
	limit, err := intParam(q.Get("limit"), 10)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Parâmetro limit inválido."), http.StatusOK)
		return
	}

	filters := map[string]string{}
	for _, key := range []string{"name", "is_active"} {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}

	products, err := h.Service.GetProducts(r.Context(), page, limit, filters)
	if products == nil {
		products = []domain.Product{}
	}
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// UpdateProductHandler lida com a requisição PUT /v1/products/{id}.
// @Summary Atualiza um produto
// @Description Restrito a admin e employee.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto (UUID)"
// @Param product body domain.Product true "Novos dados do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var changes domain.Product
	if err := respond.Decode(r, &changes); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), r.PathValue("id"), changes)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

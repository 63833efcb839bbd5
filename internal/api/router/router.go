package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "conectaloja/docs"
	"conectaloja/internal/api/cart"
	"conectaloja/internal/api/product"
	"conectaloja/internal/api/user"
	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Product *product.Handler
	User    *user.Handler
	Cart    *cart.Handler
}

// RateLimit configura o limite por IP aplicado a todas as rotas.
type RateLimit struct {
	Counter     cache.Counter
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, limit RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)
	staff := middleware.PermissionMiddleware(domain.RoleAdmin, domain.RoleEmployee)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// Health check e documentação
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Usuários
	mux.HandleFunc("POST /v1/register", h.User.RegisterUserHandler)
	mux.HandleFunc("POST /v1/login", h.User.LoginUserHandler)
	mux.HandleFunc("POST /v1/employees", auth(adminOnly(h.User.CreateEmployeeHandler)))

	// Catálogo: leitura pública, escrita restrita a admin e employee
	mux.HandleFunc("GET /v1/products", h.Product.ListProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.Product.GetProductByIDHandler)
	mux.HandleFunc("POST /v1/products", auth(staff(h.Product.CreateProductHandler)))
	mux.HandleFunc("PUT /v1/products/{id}", auth(staff(h.Product.UpdateProductHandler)))

	// Carrinho do usuário autenticado
	mux.HandleFunc("GET /v1/cart", auth(h.Cart.GetCartHandler))
	mux.HandleFunc("DELETE /v1/cart", auth(h.Cart.ClearCartHandler))
	mux.HandleFunc("POST /v1/cart/items", auth(h.Cart.AddItemHandler))
	mux.HandleFunc("PUT /v1/cart/items/{productId}", auth(h.Cart.UpdateItemHandler))
	mux.HandleFunc("DELETE /v1/cart/items/{productId}", auth(h.Cart.RemoveItemHandler))
	mux.HandleFunc("POST /v1/cart/sync", auth(h.Cart.SyncHandler))

	var handler http.Handler = mux
	if limit.Counter != nil {
		handler = middleware.RateLimiter(limit.Counter, limit.MaxRequests, limit.Period, log)(handler)
	}
	handler = middleware.RequestLogger(log)(handler)
	return otelhttp.NewHandler(handler, "conectaloja-api")
}

// PingHandler responde o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"conectaloja/config"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/database"
	"conectaloja/internal/pkg/logger"
	"conectaloja/internal/pkg/token"

	"conectaloja/internal/api/cart"
	"conectaloja/internal/api/product"
	"conectaloja/internal/api/router"
	"conectaloja/internal/api/user"
	"conectaloja/internal/repository/cartrepo"
	"conectaloja/internal/repository/productrepo"
	"conectaloja/internal/repository/userrepo"
	"conectaloja/internal/service/cartservice"
	"conectaloja/internal/service/productservice"
	"conectaloja/internal/service/userservice"
)

func main() {
	// O .env é opcional: em contêiner as variáveis vêm do ambiente.
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	if envErr != nil {
		log.Warn("Arquivo .env não encontrado. Usando apenas variáveis do ambiente.", nil)
	}
	log.Info("Inicializando API Conecta-Loja.", map[string]interface{}{"env": cfg.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Infraestrutura
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPool, cfg.DBTimeout, log)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		// Sem Redis o catálogo lê direto do banco e o rate limit libera as requisições.
		log.Error("Redis indisponível na inicialização.", err)
	} else {
		log.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
	}
	defer cacheClient.Close()

	// 2. Injeção de dependências: Repository -> Service -> Handler
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.ProductCacheTTL, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	cartRepo := cartrepo.NewCartRepository(db, cfg.DBTimeout, log)

	productSvc := productservice.NewService(productRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	cartSvc := cartservice.NewService(cartRepo, productRepo, log)

	handlers := router.Handlers{
		Product: product.NewHandler(productSvc, log),
		User:    user.NewHandler(userSvc, log),
		Cart:    cart.NewHandler(cartSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	r := router.NewRouter(handlers, tokenSvc, router.RateLimit{
		Counter:     cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 3. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	<-ctx.Done()
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Desligamento do servidor falhou.", err)
		os.Exit(1)
	}
	log.Info("Servidor encerrado.", nil)
}

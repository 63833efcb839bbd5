// Package cli implementa os comandos do cartctl, o cliente de linha de comando da loja.
package cli

import (
	"context"
	"fmt"

	"conectaloja/config"
	"conectaloja/internal/cartclient"
	"conectaloja/internal/cartstorage"
	"conectaloja/internal/cartstore"
	"conectaloja/internal/cartsync"
	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
)

// session é o núcleo montado para uma execução de comando: slot local em arquivo,
// fonte de credencial, cliente HTTP e Sync Engine.
type session struct {
	backend *cache.FileClient
	creds   *cartsync.PollingCredentialSource
	client  *cartclient.Client
	engine  *cartsync.Engine
	logger  logger.Logger
}

func newSession(cfg *config.ClientConfig, log logger.Logger) (*session, error) {
	backend, err := cache.NewFileClient(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("armazenamento local indisponível: %w", err)
	}

	creds := cartsync.NewPollingCredentialSource(backend, cartsync.TokenKey, cfg.CredentialPoll, log)
	client := cartclient.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, creds.Current, log)
	engine := cartsync.NewEngine(
		cartstore.NewStore(),
		cartstorage.NewAdapter(backend, log),
		client,
		creds,
		log,
		cartsync.Options{Debounce: cfg.Debounce, RequestTimeout: cfg.HTTPTimeout},
	)

	return &session{backend: backend, creds: creds, client: client, engine: engine, logger: log}, nil
}

// start hidrata o carrinho e, havendo credencial, sincroniza com o servidor.
// Falha na sincronização não impede o comando: o carrinho local continua valendo.
func (s *session) start(ctx context.Context) {
	if err := s.engine.Start(ctx); err != nil {
		s.logger.Warn("Servidor indisponível. Usando o carrinho local.", map[string]interface{}{"error": err.Error()})
	}
}

// finish envia as atualizações pendentes e libera timers e inscrições.
func (s *session) finish(ctx context.Context) error {
	defer s.engine.Close()
	return s.engine.Flush(ctx)
}

func (s *session) saveToken(ctx context.Context, token string) error {
	return s.backend.Set(ctx, cartsync.TokenKey, token, 0)
}

func (s *session) dropToken(ctx context.Context) error {
	return s.backend.Delete(ctx, cartsync.TokenKey)
}

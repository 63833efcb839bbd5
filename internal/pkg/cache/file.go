package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileClient é um armazenamento chave-valor durável em disco, um arquivo por chave.
// É o "armazenamento local" do cliente da loja: sobrevive a reinícios do processo.
type FileClient struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// fileRecord é o conteúdo gravado em cada arquivo.
type fileRecord struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// NewFileClient cria o diretório (se necessário) e devolve o cliente.
func NewFileClient(dir string) (*FileClient, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de armazenamento local: %w", err)
	}
	return &FileClient{dir: dir, now: time.Now}, nil
}

func (c *FileClient) path(key string) string {
	return filepath.Join(c.dir, url.PathEscape(key)+".json")
}

// Get lê o valor; chaves ausentes ou expiradas retornam ErrCacheMiss.
func (c *FileClient) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}

	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("registro corrompido para a chave %q: %w", key, err)
	}
	if rec.ExpiresAt != nil && !c.now().Before(*rec.ExpiresAt) {
		_ = os.Remove(c.path(key))
		return "", ErrCacheMiss
	}
	return rec.Value, nil
}

// Set grava o valor de forma atômica (arquivo temporário + rename).
// Aceita string, []byte ou qualquer valor serializável em JSON.
func (c *FileClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var rec fileRecord
	switch v := value.(type) {
	case string:
		rec.Value = v
	case []byte:
		rec.Value = string(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("falha ao serializar valor para a chave %q: %w", key, err)
		}
		rec.Value = string(encoded)
	}
	if expiration > 0 {
		expiresAt := c.now().Add(expiration)
		rec.ExpiresAt = &expiresAt
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Delete remove a chave; remover uma chave ausente não é erro.
func (c *FileClient) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

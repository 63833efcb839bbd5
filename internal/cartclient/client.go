// Package cartclient é o cliente HTTP da API de carrinho, catálogo e autenticação.
// Implementa cartsync.CartService.
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/logger"
)

// TokenFunc devolve a credencial atual ("" quando anônimo).
type TokenFunc func(ctx context.Context) string

// APIError é a falha devolvida pela API, no envelope { success:false, code, category, message }.
type APIError struct {
	Status   int
	Category string
	Message  string
}

func (e *APIError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d (%s): %s", e.Status, e.Category, e.Message)
}

// ErrUnauthenticated é devolvido pelas operações de carrinho chamadas sem credencial.
var ErrUnauthenticated = errors.New("cartclient: nenhuma credencial disponível")

// Client fala com a API da loja.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	logger  logger.Logger
}

// NewClient cria o cliente com transporte instrumentado por otelhttp.
func NewClient(baseURL string, timeout time.Duration, token TokenFunc, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token:  token,
		logger: log,
	}
}

type cartEnvelope struct {
	Success bool        `json:"success"`
	Cart    domain.Cart `json:"cart"`
}

type errorEnvelope struct {
	Code     int    `json:"code"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// --- Carrinho ---

// GetCart busca o carrinho do usuário autenticado.
func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/v1/cart", nil)
}

// AddToCart soma quantity ao item do produto.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	return c.cartCall(ctx, http.MethodPost, "/v1/cart/items", body)
}

// UpdateCartItem define a quantidade absoluta do item.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	body := map[string]interface{}{"quantity": quantity}
	return c.cartCall(ctx, http.MethodPut, "/v1/cart/items/"+url.PathEscape(productID), body)
}

// RemoveFromCart remove o item do produto.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/v1/cart/items/"+url.PathEscape(productID), nil)
}

// ClearCart esvazia o carrinho do servidor.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.cartCall(ctx, http.MethodDelete, "/v1/cart", nil)
	return err
}

// SyncLocalCart envia o carrinho anônimo para ser mesclado ao do servidor.
func (c *Client) SyncLocalCart(ctx context.Context, lines []domain.CartLine) (domain.Cart, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	body := map[string]interface{}{"items": lines}
	return c.cartCall(ctx, http.MethodPost, "/v1/cart/sync", body)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body interface{}) (domain.Cart, error) {
	token := c.token(ctx)
	if token == "" {
		return domain.Cart{}, ErrUnauthenticated
	}

	var env cartEnvelope
	if err := c.do(ctx, method, path, token, body, &env); err != nil {
		return domain.Cart{}, err
	}
	if !env.Success {
		return domain.Cart{}, fmt.Errorf("%s %s: resposta sem success=true", method, path)
	}
	if env.Cart.Items == nil {
		env.Cart.Items = []domain.CartItem{}
	}
	return env.Cart, nil
}

// --- Autenticação e catálogo ---

// Login troca email e senha por um JWT.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/login", "", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("cartclient: resposta de login sem token")
	}
	return resp.Token, nil
}

// ListProducts lista o catálogo ativo.
func (c *Client) ListProducts(ctx context.Context, page, limit int) ([]domain.Product, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := "/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct busca um produto pelo ID.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(id), "", nil, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// do executa a requisição e decodifica a resposta em out; status >= 400 vira *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("falha ao serializar requisição: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("falha ao montar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Chamada à API concluída.", map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("falha ao ler resposta de %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			apiErr.Category = env.Category
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("resposta inválida de %s %s: %w", method, path, err)
	}
	return nil
}

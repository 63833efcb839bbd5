package cartrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"conectaloja/internal/domain"
	apperror "conectaloja/internal/errors"
	"conectaloja/internal/pkg/logger"
)

// uniqueViolation é o SQLSTATE do PostgreSQL para violação de restrição UNIQUE.
const uniqueViolation = "23505"

// CartRepository guarda um carrinho por usuário e suas linhas (únicas por produto).
type CartRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
	now       func() time.Time
}

// NewCartRepository cria o repositório de carrinho.
func NewCartRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *CartRepository {
	return &CartRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IsUniqueViolation informa se err (ou algum erro embrulhado) é uma violação de UNIQUE do PostgreSQL.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const selectCartSQL = `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`

func (r *CartRepository) findCart(ctx context.Context, userID string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.DB.QueryRowContext(ctx, selectCartSQL, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

// GetOrCreateCart devolve o carrinho do usuário (sem itens), criando-o na primeira chamada.
// Duas criações concorrentes resolvem pela restrição UNIQUE(user_id).
func (r *CartRepository) GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	cart, err := r.findCart(ctxTimeout, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, apperror.NewDBError("Falha ao buscar carrinho", err)
	}

	now := r.now()
	cart = domain.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	_, err = r.DB.ExecContext(ctxTimeout,
		`INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt,
	)
	if err == nil {
		r.logger.Info("Carrinho criado.", map[string]interface{}{"cart_id": cart.ID, "user_id": userID})
		return cart, nil
	}
	if !IsUniqueViolation(err) {
		return domain.Cart{}, apperror.NewDBError("Falha ao criar carrinho", err)
	}

	r.logger.Debug("Carrinho criado por outra requisição. Relendo.", map[string]interface{}{"user_id": userID})
	cart, err = r.findCart(ctxTimeout, userID)
	if err != nil {
		return domain.Cart{}, apperror.NewDBError("Falha ao reler carrinho", err)
	}
	return cart, nil
}

// ListItems devolve as linhas do carrinho com os produtos completos, na ordem de inclusão.
func (r *CartRepository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const listSQL = `
		SELECT p.id, p.name, p.description, p.price, p.discount, p.discount_type, p.image, p.is_active,
		       p.created_at, p.updated_at, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, listSQL, cartID)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao listar itens do carrinho", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var (
			item                             domain.CartItem
			description, discountType, image sql.NullString
		)
		if err := rows.Scan(
			&item.Product.ID,
			&item.Product.Name,
			&description,
			&item.Product.Price,
			&item.Product.Discount,
			&discountType,
			&image,
			&item.Product.IsActive,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
			&item.Quantity,
		); err != nil {
			return nil, apperror.NewDBError("Falha ao ler item do carrinho", err)
		}
		item.Product.Description = description.String
		item.Product.DiscountType = domain.DiscountType(discountType.String)
		item.Product.Image = image.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar itens do carrinho", err)
	}
	return items, nil
}

// upsertItemSQL soma a quantidade à linha existente do produto ou cria a linha.
const upsertItemSQL = `
	INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (cart_id, product_id)
	DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`

// AddItem soma quantity à linha do produto.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout, upsertItemSQL, uuid.NewString(), cartID, productID, quantity, r.now()); err != nil {
		return apperror.NewDBError("Falha ao adicionar item ao carrinho", err)
	}
	return nil
}

// SetItemQuantity define a quantidade absoluta; a linha precisa existir.
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE cart_items SET quantity = $3, updated_at = $4 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity, r.now(),
	)
	if err != nil {
		return apperror.NewDBError("Falha ao atualizar item do carrinho", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao confirmar atualização do item", err)
	}
	if n == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto %s não está no carrinho.", productID))
	}
	return nil
}

// RemoveItem apaga a linha do produto. Remover um produto ausente não é erro.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID,
	); err != nil {
		return apperror.NewDBError("Falha ao remover item do carrinho", err)
	}
	return nil
}

// Clear apaga todas as linhas do carrinho.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return apperror.NewDBError("Falha ao limpar carrinho", err)
	}
	return nil
}

// MergeItems soma as linhas recebidas ao carrinho numa única transação.
func (r *CartRepository) MergeItems(ctx context.Context, cartID string, lines []domain.CartLine) (err error) {
	if len(lines) == 0 {
		return nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao iniciar transação de mesclagem", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctxTimeout, upsertItemSQL)
	if err != nil {
		return apperror.NewDBError("Falha ao preparar mesclagem", err)
	}
	defer stmt.Close()

	// Cada linha recebe um instante próprio para que ListItems devolva a ordem local.
	now := r.now()
	for i, line := range lines {
		addedAt := now.Add(time.Duration(i) * time.Microsecond)
		if _, err = stmt.ExecContext(ctxTimeout, uuid.NewString(), cartID, line.ProductID, line.Quantity, addedAt); err != nil {
			return apperror.NewDBError(fmt.Sprintf("Falha ao mesclar produto %s", line.ProductID), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao confirmar mesclagem", err)
	}

	r.logger.Info("Carrinho local mesclado.", map[string]interface{}{"cart_id": cartID, "lines": len(lines)})
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	conn
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{conn{pool: pool}}
}

func (r *OrderRepository) Add(ctx context.Context, o *domorder.Order) error {
	const stmt = `
INSERT INTO orders (id, product_id, customer_email, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, o.ID, o.ProductID, o.CustomerEmail, o.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domorder.ErrConflict
		case isForeignKeyViolation(err):
			return domproduct.ErrNotFound
		}
		return fmt.Errorf("add order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domorder.Order, error) {
	const query = `SELECT id, product_id, customer_email, created_at FROM orders WHERE id = $1`

	var o domorder.Order
	err := r.queryRow(ctx, query, id).
		Scan(&o.ID, &o.ProductID, &o.CustomerEmail, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domorder.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return &o, nil
}

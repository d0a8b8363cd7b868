package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, sku, name, quantity, price::text, updated_at`

type ProductRepository struct {
	conn
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{conn{pool: pool}}
}

func (r *ProductRepository) Add(ctx context.Context, p *domproduct.Product) error {
	const stmt = `
INSERT INTO products (id, sku, name, quantity, price, updated_at)
VALUES ($1, $2, $3, $4, $5::numeric, $6)`

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.exec(ctx, stmt, p.ID, p.SKU, p.Name, p.Quantity, p.Price.String(), updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domproduct.ErrConflict
		}
		return fmt.Errorf("add product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domproduct.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domproduct.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *ProductRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return domproduct.ErrInsufficientStock
	}
	const stmt = `UPDATE products SET quantity = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, quantity)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domproduct.ErrNotFound
	}
	return nil
}

// decrementOne takes one unit unless the product is already empty.
func (r *ProductRepository) decrementOne(ctx context.Context, id string) error {
	const stmt = `
UPDATE products SET quantity = quantity - 1, updated_at = NOW()
WHERE id = $1 AND quantity >= 1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domproduct.ErrInsufficientStock
}

func (r *ProductRepository) findOne(ctx context.Context, query string, arg string) (*domproduct.Product, error) {
	var (
		p     domproduct.Product
		price string
	)
	err := r.queryRow(ctx, query, arg).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Quantity, &price, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domproduct.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *ProductRepository) Pool() *pgxpool.Pool { return r.pool }

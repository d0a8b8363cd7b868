package postgres

import (
	"context"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories that share one pool and commits checkouts across them.
type Store struct {
	pool     *pgxpool.Pool
	products *ProductRepository
	orders   *OrderRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		products: NewProductRepository(pool),
		orders:   NewOrderRepository(pool),
	}
}

func (s *Store) Products() *ProductRepository { return s.products }

func (s *Store) Orders() *OrderRepository { return s.orders }

// CommitCheckout takes one unit of productID and inserts o in one transaction.
func (s *Store) CommitCheckout(ctx context.Context, productID string, o *domorder.Order) error {
	return withTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.products.decrementOne(ctx, productID); err != nil {
			return err
		}
		return s.orders.Add(ctx, o)
	})
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

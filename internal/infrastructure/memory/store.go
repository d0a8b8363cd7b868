package memory

import (
	"context"
	"fmt"
	"sync"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

// Store keeps products and orders behind one lock so a checkout commit is a single critical section.
type Store struct {
	mu       sync.RWMutex
	products map[string]*domproduct.Product
	skuIndex map[string]string // sku -> product id
	orders   map[string]*domorder.Order
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*domproduct.Product),
		skuIndex: make(map[string]string),
		orders:   make(map[string]*domorder.Order),
	}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// CommitCheckout takes one unit of productID and stores o. Neither happens unless both can.
func (s *Store) CommitCheckout(ctx context.Context, productID string, o *domorder.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("memory store: order id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return domproduct.ErrNotFound
	}
	if _, exists := s.orders[o.ID]; exists {
		return domorder.ErrConflict
	}
	if err := p.Deduct(1); err != nil {
		return err
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

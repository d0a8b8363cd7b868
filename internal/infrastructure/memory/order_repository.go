package memory

import (
	"context"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Add(ctx context.Context, o *domorder.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[o.ID]; exists {
		return domorder.ErrConflict
	}
	r.s.orders[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domorder.Order, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

// Count returns the number of stored orders.
func (r *OrderRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.orders)
}

package memory

import (
	"context"
	"fmt"
	"time"

	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Add(ctx context.Context, p *domproduct.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return domproduct.ErrConflict
	}
	if _, exists := r.s.skuIndex[p.SKU]; exists {
		return domproduct.ErrConflict
	}

	clone := p.Clone()
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = time.Now().UTC()
	}
	r.s.products[p.ID] = clone
	r.s.skuIndex[p.SKU] = p.ID
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domproduct.Product, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domproduct.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domproduct.Product, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.skuIndex[sku]
	if !ok {
		return nil, domproduct.ErrNotFound
	}
	return r.s.products[id].Clone(), nil
}

func (r *ProductRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	_ = ctx
	if quantity < 0 {
		return domproduct.ErrInsufficientStock
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return domproduct.ErrNotFound
	}
	p.SetQuantity(quantity)
	return nil
}

package inventory

import (
	"context"
	"errors"
	"fmt"

	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

// StockGate answers availability questions by SKU for the checkout flow.
type StockGate struct {
	repo domproduct.Repository
}

func NewStockGate(repo domproduct.Repository) *StockGate {
	return &StockGate{repo: repo}
}

// HasStock reports whether quantity units of sku are on hand. An unknown SKU has no stock.
func (g *StockGate) HasStock(ctx context.Context, sku string, quantity int) (bool, error) {
	p, err := g.repo.FindBySKU(ctx, sku)
	if errors.Is(err, domproduct.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inventory: stock lookup %q: %w", sku, err)
	}
	return p.InStock(quantity), nil
}

// Reserve confirms the units are still there just before payment. It holds nothing:
// the decrement happens at commit, which refuses to take stock below zero.
func (g *StockGate) Reserve(ctx context.Context, sku string, quantity int) error {
	if quantity <= 0 {
		return domproduct.ErrInvalidQuantity
	}
	inStock, err := g.HasStock(ctx, sku, quantity)
	if err != nil {
		return err
	}
	if !inStock {
		return domproduct.ErrInsufficientStock
	}
	return nil
}

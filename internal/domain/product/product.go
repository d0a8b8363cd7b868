package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrConflict          = errors.New("product: already exists")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is a sellable item together with its quantity on hand.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	UpdatedAt time.Time
}

// InStock reports whether at least quantity units are on hand.
func (p *Product) InStock(quantity int) bool {
	return p != nil && quantity > 0 && p.Quantity >= quantity
}

// Deduct removes quantity units, refusing to take the stock below zero.
func (p *Product) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Quantity {
		return ErrInsufficientStock
	}
	p.Quantity -= quantity
	p.touch()
	return nil
}

// SetQuantity overwrites the stock level. Callers validate the value.
func (p *Product) SetQuantity(quantity int) {
	p.Quantity = quantity
	p.touch()
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

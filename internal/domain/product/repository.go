package product

import "context"

type Repository interface {
	Add(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
}

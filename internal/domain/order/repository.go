package order

import "context"

type Repository interface {
	Add(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
}

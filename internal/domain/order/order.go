package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound             = errors.New("order: not found")
	ErrConflict             = errors.New("order: already exists")
	ErrProductRequired      = errors.New("order: product id is required")
	ErrCustomerEmailMissing = errors.New("order: customer email is required")
)

// Order is created once per successful checkout and never changes afterwards.
type Order struct {
	ID            string
	ProductID     string
	CustomerEmail string
	CreatedAt     time.Time
}

func New(id, productID, customerEmail string, createdAt time.Time) (*Order, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrProductRequired
	}
	if strings.TrimSpace(customerEmail) == "" {
		return nil, ErrCustomerEmailMissing
	}
	return &Order{
		ID:            id,
		ProductID:     productID,
		CustomerEmail: strings.TrimSpace(customerEmail),
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

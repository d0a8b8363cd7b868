package checkout

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

// StockAvailability answers and holds stock by SKU.
type StockAvailability interface {
	HasStock(ctx context.Context, sku string, quantity int) (bool, error)
	Reserve(ctx context.Context, sku string, quantity int) error
}

type NotificationSink interface {
	SendConfirmation(ctx context.Context, email string, o *domorder.Order) error
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *domorder.Order) error
}

// Ledger commits a paid checkout: one unit off productID and o stored, together or not at all.
// It returns product.ErrInsufficientStock when the unit is already gone.
type Ledger interface {
	CommitCheckout(ctx context.Context, productID string, o *domorder.Order) error
}

// IdempotencyStore deduplicates order submissions by client-supplied key.
//
// Claim returns claimed=true when the caller now owns key. Otherwise orderID holds the order
// a previous request completed with, or is empty while that request is still running.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (orderID string, claimed bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type IDGenerator interface {
	NewID() string
}

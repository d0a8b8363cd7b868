package outbox

import (
	"context"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
)

// OrderEvents publishes order lifecycle events on any outbox transport.
type OrderEvents struct {
	publisher domoutbox.Publisher
}

func NewOrderEvents(publisher domoutbox.Publisher) *OrderEvents {
	return &OrderEvents{publisher: publisher}
}

func (p *OrderEvents) PublishOrderCreated(ctx context.Context, o *domorder.Order) error {
	if o == nil {
		return fmt.Errorf("outbox: order is required")
	}
	return p.publisher.Publish(ctx, domorder.NewOrderCreatedEvent(o))
}

package notification

import (
	"context"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
)

// QueueSink hands confirmations to the outbox so checkout never waits on mail delivery.
type QueueSink struct {
	publisher domoutbox.Publisher
}

func NewQueueSink(publisher domoutbox.Publisher) *QueueSink {
	return &QueueSink{publisher: publisher}
}

func (s *QueueSink) SendConfirmation(ctx context.Context, email string, o *domorder.Order) error {
	if o == nil {
		return fmt.Errorf("notification: order is required")
	}
	return s.publisher.Publish(ctx, domorder.NewConfirmationRequestedEvent(email, o))
}

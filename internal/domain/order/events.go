package order

import "time"

// OrderCreatedEvent is emitted once an order has been committed.
type OrderCreatedEvent struct {
	OrderID       string    `json:"order_id"`
	ProductID     string    `json:"product_id"`
	CustomerEmail string    `json:"customer_email"`
	CreatedAt     time.Time `json:"created_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		CustomerEmail: o.CustomerEmail,
		CreatedAt:     o.CreatedAt,
		OccurredAt:    time.Now().UTC(),
	}
}

// ConfirmationRequestedEvent asks the mail pipeline to confirm an order to the customer.
type ConfirmationRequestedEvent struct {
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (ConfirmationRequestedEvent) EventName() string { return "order.confirmation_requested" }

func NewConfirmationRequestedEvent(email string, o *Order) ConfirmationRequestedEvent {
	return ConfirmationRequestedEvent{
		OrderID:    o.ID,
		ProductID:  o.ProductID,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

func (e OrderCreatedEvent) PartitionKey() string { return e.OrderID }

func (e ConfirmationRequestedEvent) PartitionKey() string { return e.OrderID }

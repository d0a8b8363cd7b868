package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC-3", -3*3600))

	o, err := New("order-1", "1", "  a@b.com ", createdAt)
	require.NoError(t, err)
	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, "1", o.ProductID)
	assert.Equal(t, "a@b.com", o.CustomerEmail)
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
	assert.True(t, o.CreatedAt.Equal(createdAt))

	_, err = New("order-2", " ", "a@b.com", createdAt)
	assert.ErrorIs(t, err, ErrProductRequired)

	_, err = New("order-3", "1", "", createdAt)
	assert.ErrorIs(t, err, ErrCustomerEmailMissing)
}

func TestNewOrderCreatedEvent(t *testing.T) {
	o := &Order{ID: "order-1", ProductID: "1", CustomerEmail: "a@b.com", CreatedAt: time.Now().UTC()}

	evt := NewOrderCreatedEvent(o)
	assert.Equal(t, "order.created", evt.EventName())
	assert.Equal(t, o.ID, evt.OrderID)
	assert.Equal(t, o.CustomerEmail, evt.CustomerEmail)
	assert.False(t, evt.OccurredAt.IsZero())

	req := NewConfirmationRequestedEvent("a@b.com", o)
	assert.Equal(t, "order.confirmation_requested", req.EventName())
	assert.Equal(t, "a@b.com", req.Email)
}

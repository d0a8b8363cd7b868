package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnotification "github.com/Zhima-Mochi/minishop-checkout/internal/application/notification"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
)

type recordingPublisher struct {
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return nil
}

func TestQueueSink_PublishesConfirmationRequest(t *testing.T) {
	pub := &recordingPublisher{}
	o, err := domorder.New("o-1", "1", "a@b.com", time.Now())
	require.NoError(t, err)

	require.NoError(t, NewQueueSink(pub).SendConfirmation(context.Background(), "a@b.com", o))

	require.Len(t, pub.events, 1)
	evt, ok := pub.events[0].(domorder.ConfirmationRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", evt.Email)
	assert.Equal(t, "o-1", evt.OrderID)

	assert.Error(t, NewQueueSink(pub).SendConfirmation(context.Background(), "a@b.com", nil))
}

func TestLogMailer_RespectsCancellation(t *testing.T) {
	m := NewLogMailer(nil)
	c := appnotification.Confirmation{OrderID: "o-1"}

	assert.NoError(t, m.SendOrderConfirmation(context.Background(), "a@b.com", c))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendOrderConfirmation(ctx, "a@b.com", c), context.Canceled)
}

package outbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Keyed events choose their own partition key on transports that have one.
type Keyed interface {
	PartitionKey() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Decoder rebuilds an event from its wire payload.
type Decoder func(payload []byte) (Event, error)

// JSONDecoder decodes payloads produced by json.Marshal of E.
func JSONDecoder[E Event]() Decoder {
	return func(payload []byte) (Event, error) {
		var e E
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("outbox: decode %s: %w", e.EventName(), err)
		}
		return e, nil
	}
}

// PartitionKey returns e's own key when it has one, otherwise its name.
func PartitionKey(e Event) string {
	if k, ok := e.(Keyed); ok {
		if key := k.PartitionKey(); key != "" {
			return key
		}
	}
	return e.EventName()
}

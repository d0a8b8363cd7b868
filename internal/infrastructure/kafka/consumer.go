package kafka

import (
	"context"
	"errors"
	"sync"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/Zhima-Mochi/minishop-checkout/internal/pkg/tracing"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Consumer feeds Kafka messages to outbox handlers, so workers subscribe the same way
// they do on the in-memory bus.
type Consumer struct {
	reader   MessageReader
	decoders map[string]domoutbox.Decoder
	log      observability.Logger

	mu   sync.RWMutex
	subs map[string][]domoutbox.Handler
}

func NewConsumer(reader MessageReader, decoders map[string]domoutbox.Decoder, logger observability.Logger) *Consumer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Consumer{
		reader:   reader,
		decoders: decoders,
		log:      logger.With(observability.F("component", "kafka_consumer")),
		subs:     make(map[string][]domoutbox.Handler),
	}
}

func (c *Consumer) Subscribe(eventName string, h domoutbox.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[eventName] = append(c.subs[eventName], h)
}

// Run consumes until ctx ends. Every fetched message is committed once handled, including
// messages that fail to decode or whose handler errors: nothing is retried.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Warn("kafka_commit_failed",
				observability.F("topic", msg.Topic),
				observability.F("offset", msg.Offset),
				observability.F("error", err.Error()),
			)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	name := tracing.HeaderValue(msg.Headers, EventTypeHeader)
	logger := c.log.With(
		observability.F("event", name),
		observability.F("topic", msg.Topic),
		observability.F("partition", msg.Partition),
		observability.F("offset", msg.Offset),
	)

	decode, ok := c.decoders[name]
	if !ok {
		logger.Debug("kafka_message_skipped_unknown_type")
		return
	}
	event, err := decode(msg.Value)
	if err != nil {
		logger.Error("kafka_message_decode_failed", observability.F("error", err.Error()))
		return
	}

	c.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), c.subs[name]...)
	c.mu.RUnlock()

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx = logctx.With(msgCtx, logger)
	for _, h := range handlers {
		if err := h(msgCtx, event); err != nil {
			logger.Warn("event_handler_error", observability.F("error", err.Error()))
		}
	}
}

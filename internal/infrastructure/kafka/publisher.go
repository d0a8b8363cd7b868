package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/Zhima-Mochi/minishop-checkout/internal/pkg/tracing"

	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

// Producer is the part of *kafka.Writer the publisher needs.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns a writer that waits for all in-sync replicas. Topics are set per message.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// Publisher writes outbox events to Kafka, one topic per event name.
type Publisher struct {
	producer Producer
	topics   map[string]string
	log      observability.Logger
}

func NewPublisher(producer Producer, topics map[string]string, logger observability.Logger) *Publisher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Publisher{
		producer: producer,
		topics:   topics,
		log:      logger.With(observability.F("component", "kafka_publisher")),
	}
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	name := e.EventName()
	topic, ok := p.topics[name]
	if !ok {
		return fmt.Errorf("kafka: no topic for event %q", name)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", name, err)
	}

	headers := []kafka.Header{{Key: EventTypeHeader, Value: []byte(name)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(domoutbox.PartitionKey(e)),
		Value:   payload,
		Headers: headers,
	}
	logger := logctx.FromOr(ctx, p.log).With(
		observability.F("event", name),
		observability.F("topic", topic),
	)
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		logger.Error("kafka_publish_failed", observability.F("error", err.Error()))
		return fmt.Errorf("kafka: write %s: %w", name, err)
	}
	logger.Debug("kafka_published")
	return nil
}

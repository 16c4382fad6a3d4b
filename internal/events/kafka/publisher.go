package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/birukt/bank_ledger_app/internal/core/domain/events"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// Publisher emits domain events to a Kafka topic. Messages are keyed by
// correlation id so both legs of a transfer land on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed event publisher.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

var _ portssvc.EventPublisher = (*Publisher)(nil)

// PublishTransactionCompleted sends one event to the topic.
func (p *Publisher) PublishTransactionCompleted(ctx context.Context, event events.TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction completed event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CorrelationID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

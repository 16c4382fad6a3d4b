package noop

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/core/domain/events"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
)

// Publisher discards every event. Used when no Kafka brokers are configured.
type Publisher struct{}

func NewPublisher() *Publisher { return &Publisher{} }

var _ portssvc.EventPublisher = (*Publisher)(nil)

func (Publisher) PublishTransactionCompleted(ctx context.Context, event events.TransactionCompleted) error {
	return nil
}

func (Publisher) Close() error { return nil }

package services

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/core/domain/events"
)

// EventPublisher emits domain events after their transaction has committed.
// Publishing is best-effort: the ledger engine logs failures but never rolls
// back a committed mutation because of them.
type EventPublisher interface {
	PublishTransactionCompleted(ctx context.Context, event events.TransactionCompleted) error
	Close() error
}

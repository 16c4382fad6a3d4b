package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a balance mutation and its ledger
// entries have been committed. For transfers both legs share CorrelationID.
type TransactionCompleted struct {
	CorrelationID string          `json:"correlation_id"`
	Kind          string          `json:"kind"`
	AccountID     string          `json:"account_id"`
	Counterparty  string          `json:"counterparty,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

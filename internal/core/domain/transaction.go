package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry by the balance movement it records.
type TransactionKind string

const (
	Deposit     TransactionKind = "DEPOSIT"
	Withdraw    TransactionKind = "WITHDRAW"
	TransferOut TransactionKind = "TRANSFER_OUT"
	TransferIn  TransactionKind = "TRANSFER_IN"
)

// IsDebit reports whether the kind decreases the account balance.
func (k TransactionKind) IsDebit() bool {
	return k == Withdraw || k == TransferOut
}

// Transaction is an immutable ledger entry recording one balance-affecting
// event on one account. Entries are never updated or deleted; the signed sum
// of an account's entries always equals its current balance.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	AccountID     string          `json:"accountID"`     // FK -> accounts.account_id (Not Null)
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`                          // Positive value; precise decimal type
	CounterpartyID string         `json:"counterpartyID,omitempty"`        // Other account of a transfer, empty otherwise
	CorrelationID string          `json:"correlationID"`                   // Shared by the two legs of a transfer
	Sequence      int64           `json:"sequence"`                        // Store-assigned monotonic tie-break
	CreatedAt     time.Time       `json:"createdAt"`
}

// SignedAmount returns the amount with the sign of its effect on the balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Kind.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

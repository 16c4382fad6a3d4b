package domain

import (
	"github.com/shopspring/decimal"
)

// AccountStatus reflects whether an account may take part in balance mutations.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountFrozen AccountStatus = "FROZEN"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents a customer's single money account within the core domain.
// This is the primary representation used by services. Balances are mutated
// exclusively through the ledger engine; every mutation bumps Version.
type Account struct {
	AccountID  string          `json:"accountID"`  // Primary Key (UUID)
	CustomerID string          `json:"customerID"` // FK -> customers.customer_id (NON-NULL, 1-1)
	Balance    decimal.Decimal `json:"balance"`    // Never negative
	Status     AccountStatus   `json:"status"`
	Version    int64           `json:"version"` // Optimistic concurrency token
	AuditFields
}

// CanTransact reports whether the account may be debited or credited.
func (a Account) CanTransact() bool {
	return a.Status == AccountActive
}

package domain

import "github.com/shopspring/decimal"

// TransactionStat aggregates ledger entries of one kind for the operator dashboard.
type TransactionStat struct {
	Kind  TransactionKind `json:"kind"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

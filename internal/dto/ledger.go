package dto

import (
	"time"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountRequest carries the amount for a deposit or withdrawal.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// BalanceResponse is returned after a successful deposit or withdrawal.
type BalanceResponse struct {
	AccountID  string          `json:"accountID"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// TransferRequest identifies the receiver either by account id or by phone
// number; exactly one of the two must be set.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID"`
	ToPhoneNumber string          `json:"toPhoneNumber"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// TransferResult reports both post-transfer balances and the correlation id
// shared by the two ledger entries.
type TransferResult struct {
	FromAccountID string          `json:"fromAccountID"`
	ToAccountID   string          `json:"toAccountID"`
	FromBalance   decimal.Decimal `json:"fromBalance"`
	ToBalance     decimal.Decimal `json:"toBalance"`
	CorrelationID string          `json:"correlationID"`
}

// TransactionResponse is the API shape of a ledger entry.
type TransactionResponse struct {
	TransactionID  string          `json:"transactionID"`
	AccountID      string          `json:"accountID"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	CounterpartyID string          `json:"counterpartyID,omitempty"`
	CorrelationID  string          `json:"correlationID"`
	Sequence       int64           `json:"sequence"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ListTransactionsParams defines query parameters for transaction history.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a history page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its API shape.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  t.TransactionID,
		AccountID:      t.AccountID,
		Kind:           string(t.Kind),
		Amount:         t.Amount,
		CounterpartyID: t.CounterpartyID,
		CorrelationID:  t.CorrelationID,
		Sequence:       t.Sequence,
		CreatedAt:      t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(t)
	}
	return res
}

// ReconciliationResult reports whether an account balance matches the signed
// sum of its ledger entries.
type ReconciliationResult struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledgerSum"`
	Balanced  bool            `json:"balanced"`
}

// TransactionStatsResponse wraps per-kind aggregates for the operator dashboard.
type TransactionStatsResponse struct {
	Stats []domain.TransactionStat `json:"stats"`
}

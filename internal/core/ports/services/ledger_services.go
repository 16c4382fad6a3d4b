package services

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc defines the balance-mutating operations of the ledger engine.
type LedgerWriterSvc interface {
	// Deposit increases the account balance by amount and appends a DEPOSIT
	// entry atomically. Returns the post-operation balance.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Withdraw decreases the account balance by amount and appends a WITHDRAW
	// entry atomically. Returns the post-operation balance.
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Transfer debits the sender, credits the receiver and appends the two
	// correlated entries as one atomic unit spanning both accounts.
	Transfer(ctx context.Context, req dto.TransferRequest) (*dto.TransferResult, error)
}

// LedgerReaderSvc defines read operations over the ledger.
type LedgerReaderSvc interface {
	// GetHistory returns the account's entries, most recent first. An account
	// with no entries yields an empty page, not an error.
	GetHistory(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerSvcFacade combines the ledger engine's read and write operations.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}

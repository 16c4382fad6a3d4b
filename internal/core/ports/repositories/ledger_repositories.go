package repositories

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerMutation bundles the balance deltas of one operation with the ledger
// entries that account for them. The pair is applied as a single atomic unit:
// either every balance change and every entry is persisted, or none is.
type LedgerMutation struct {
	// Entries to append; amounts are positive, the kind carries the sign.
	Entries []domain.Transaction
	// BalanceChanges maps account id to the signed delta to apply.
	BalanceChanges map[string]decimal.Decimal
}

// LedgerWriter applies balance mutations together with their ledger entries.
type LedgerWriter interface {
	// Apply locks every touched account in ascending account-id order, verifies
	// that each resulting balance stays non-negative, writes the new balances,
	// assigns monotonic sequence numbers and appends the entries, all within
	// one transaction. It returns the post-mutation balances keyed by account id.
	//
	// Failure modes: ErrNotFound (unknown account), ErrInsufficientFunds
	// (a balance would go negative), ErrConflict (lock acquisition timed out
	// or a concurrent update won; safe to retry).
	Apply(ctx context.Context, mut LedgerMutation) (map[string]decimal.Decimal, error)
}

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// ListTransactionsByAccountID returns entries for the account, most recent
	// first (created_at desc, sequence breaks ties), with token pagination.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumEntriesByAccountID returns the signed sum of all entries for the
	// account, used to verify the reconciliation invariant.
	SumEntriesByAccountID(ctx context.Context, accountID string) (decimal.Decimal, error)

	// TransactionStats aggregates entry counts and totals per kind.
	TransactionStats(ctx context.Context) ([]domain.TransactionStat, error)
}

// LedgerRepositoryFacade combines ledger read and write contracts.
type LedgerRepositoryFacade interface {
	LedgerWriter
	LedgerReader
}

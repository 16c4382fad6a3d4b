package repositories

import (
	"context"
	"time"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// AccountWriter defines write operations for account data.
// Balance writes are deliberately absent: balances are mutated only through
// LedgerWriter.Apply so that every change is paired with its ledger entries.
type AccountWriter interface {
	// UpdateAccountStatus changes the account status (freeze/unfreeze/close).
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

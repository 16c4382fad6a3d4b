package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	"github.com/birukt/bank_ledger_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// FindAccountByID returns a copy of the account.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// FindAccountsByIDs returns copies of the accounts that exist.
func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = *acc
		}
	}
	return out, nil
}

// UpdateAccountStatus changes the account status.
func (s *Store) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.Status = status
	acc.LastUpdatedAt = now
	return nil
}

// Apply persists one ledger mutation atomically under per-account locks taken
// in ascending id order. Lock waits are bounded; a timed-out wait surfaces as
// ErrConflict so the caller can retry.
func (s *Store) Apply(ctx context.Context, mut portsrepo.LedgerMutation) (map[string]decimal.Decimal, error) {
	if len(mut.BalanceChanges) == 0 {
		return nil, fmt.Errorf("%w: ledger mutation has no balance changes", apperrors.ErrValidation)
	}

	accountIDs := make([]string, 0, len(mut.BalanceChanges))
	for id := range mut.BalanceChanges {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	release, ok := s.locks.acquire(ctx, accountIDs, s.lockTimeout)
	if !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: timed out waiting for account locks", apperrors.ErrConflict)
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before mutating anything so a failure leaves the
	// store untouched.
	newBalances := make(map[string]decimal.Decimal, len(accountIDs))
	for _, id := range accountIDs {
		acc, ok := s.accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.CanTransact() {
			return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, id, acc.Status)
		}
		newBalance := acc.Balance.Add(mut.BalanceChanges[id])
		if newBalance.IsNegative() {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, id)
		}
		newBalances[id] = newBalance
	}

	now := time.Now().UTC()
	for _, id := range accountIDs {
		acc := s.accounts[id]
		acc.Balance = newBalances[id]
		acc.Version++
		acc.LastUpdatedAt = now
	}
	for i := range mut.Entries {
		entry := &mut.Entries[i]
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		entry.Sequence = s.nextSequence()
		s.entries[entry.AccountID] = append(s.entries[entry.AccountID], *entry)
	}
	return newBalances, nil
}

// ListTransactionsByAccountID returns a page of entries, most recent first.
func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Transaction, len(s.entries[accountID]))
	copy(all, s.entries[accountID])
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Sequence > all[j].Sequence
	})

	start := 0
	if nextToken != nil && *nextToken != "" {
		createdAt, sequence, err := pagination.DecodeHistoryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		for i, e := range all {
			if e.CreatedAt.Before(createdAt) || (e.CreatedAt.Equal(createdAt) && e.Sequence < sequence) {
				start = i
				break
			}
			start = len(all)
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var newNextToken *string
	if end < len(all) && len(page) > 0 {
		last := page[len(page)-1]
		token := pagination.EncodeHistoryToken(last.CreatedAt, last.Sequence)
		newNextToken = &token
	}
	return page, newNextToken, nil
}

// SumEntriesByAccountID returns the signed sum of every entry on the account.
func (s *Store) SumEntriesByAccountID(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, e := range s.entries[accountID] {
		sum = sum.Add(e.SignedAmount())
	}
	return sum, nil
}

// TransactionStats aggregates entry counts and totals per kind.
func (s *Store) TransactionStats(ctx context.Context) ([]domain.TransactionStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.TransactionKind]*domain.TransactionStat)
	for _, entries := range s.entries {
		for _, e := range entries {
			st, ok := counts[e.Kind]
			if !ok {
				st = &domain.TransactionStat{Kind: e.Kind, Total: decimal.Zero}
				counts[e.Kind] = st
			}
			st.Count++
			st.Total = st.Total.Add(e.Amount)
		}
	}

	stats := make([]domain.TransactionStat, 0, len(counts))
	for _, st := range counts {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Kind < stats[j].Kind })
	return stats, nil
}

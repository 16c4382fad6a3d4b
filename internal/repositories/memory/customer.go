package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
)

// FindCustomerByID returns a copy of the customer; soft-deleted rows are
// invisible.
func (s *Store) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok || c.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// FindCustomerByPhone returns a copy of the customer with that phone number.
func (s *Store) FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.phoneIdx[phoneNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c, ok := s.customers[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCustomers returns a page of customers ordered by creation time.
func (s *Store) ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if c.DeletedAt == nil {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CustomerID < all[j].CustomerID
	})

	if offset >= len(all) {
		return []domain.Customer{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// CreateCustomerWithAccount inserts the customer, account, directory mapping
// and opening entry as one unit.
func (s *Store) CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, opening *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.phoneIdx[customer.PhoneNumber]; exists {
		return fmt.Errorf("%w: phone number already registered", apperrors.ErrDuplicate)
	}
	if _, exists := s.customers[customer.CustomerID]; exists {
		return fmt.Errorf("%w: customer %s", apperrors.ErrDuplicate, customer.CustomerID)
	}

	accCopy := account
	custCopy := customer
	s.accounts[account.AccountID] = &accCopy
	s.customers[customer.CustomerID] = &custCopy
	s.phoneIdx[customer.PhoneNumber] = customer.CustomerID
	s.directory[customer.PhoneNumber] = account.AccountID

	if opening != nil {
		entry := *opening
		entry.Sequence = s.nextSequence()
		s.entries[entry.AccountID] = append(s.entries[entry.AccountID], entry)
	}
	return nil
}

// UpdateCustomer updates name and phone number; the directory mapping follows
// a phone change.
func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[customer.CustomerID]
	if !ok || existing.DeletedAt != nil {
		return apperrors.ErrNotFound
	}

	if customer.PhoneNumber != existing.PhoneNumber {
		if owner, taken := s.phoneIdx[customer.PhoneNumber]; taken && owner != customer.CustomerID {
			return fmt.Errorf("%w: phone number already registered", apperrors.ErrDuplicate)
		}
		delete(s.phoneIdx, existing.PhoneNumber)
		delete(s.directory, existing.PhoneNumber)
		s.phoneIdx[customer.PhoneNumber] = customer.CustomerID
		s.directory[customer.PhoneNumber] = existing.AccountID
	}

	existing.FullName = customer.FullName
	existing.PhoneNumber = customer.PhoneNumber
	existing.LastUpdatedAt = customer.LastUpdatedAt
	return nil
}

// DeleteCustomer soft-deletes a customer whose balance is exactly zero, closes
// the account and removes the directory mapping.
func (s *Store) DeleteCustomer(ctx context.Context, customerID string, now time.Time) error {
	// Take the account lock so no mutation can land mid-delete.
	s.mu.RLock()
	c, ok := s.customers[customerID]
	if !ok || c.DeletedAt != nil {
		s.mu.RUnlock()
		return apperrors.ErrNotFound
	}
	accountID := c.AccountID
	s.mu.RUnlock()

	release, acquired := s.locks.acquire(ctx, []string{accountID}, s.lockTimeout)
	if !acquired {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: timed out waiting for account lock", apperrors.ErrConflict)
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok = s.customers[customerID]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	acc, ok := s.accounts[c.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !acc.Balance.IsZero() {
		return fmt.Errorf("%w: account %s", apperrors.ErrNonZeroBalance, acc.AccountID)
	}

	deletedAt := now
	c.DeletedAt = &deletedAt
	c.LastUpdatedAt = now
	acc.Status = domain.AccountClosed
	acc.LastUpdatedAt = now
	delete(s.phoneIdx, c.PhoneNumber)
	delete(s.directory, c.PhoneNumber)
	return nil
}

// Resolve returns the account id mapped to the phone number.
func (s *Store) Resolve(ctx context.Context, phoneNumber string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, ok := s.directory[phoneNumber]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return accountID, nil
}

// Upsert creates or replaces the mapping for a phone number.
func (s *Store) Upsert(ctx context.Context, phoneNumber string, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.directory[phoneNumber] = accountID
	return nil
}

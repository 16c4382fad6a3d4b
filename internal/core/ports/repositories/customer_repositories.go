package repositories

import (
	"context"
	"time"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
)

// CustomerReader defines read operations for customer data
type CustomerReader interface {
	// FindCustomerByID retrieves a customer by their unique identifier.
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// FindCustomerByPhone retrieves a customer by their phone number.
	FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of customers (operator view).
	ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error)
}

// CustomerWriter defines write operations for customer data
type CustomerWriter interface {
	// CreateCustomerWithAccount persists the customer, their account, the
	// directory mapping and the opening ledger entry (nil when the opening
	// balance is zero) in one transaction. A customer without an account is
	// never observable. Returns ErrDuplicate on a phone-number collision.
	CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, opening *domain.Transaction) error

	// UpdateCustomer updates name and/or phone number; the directory mapping
	// follows a phone change in the same transaction. Returns ErrDuplicate if
	// the new phone number belongs to a different customer.
	UpdateCustomer(ctx context.Context, customer domain.Customer) error

	// DeleteCustomer soft-deletes the customer, closes their account and
	// removes the directory mapping, provided the balance is exactly zero
	// (checked under lock). Returns ErrNonZeroBalance otherwise.
	DeleteCustomer(ctx context.Context, customerID string, now time.Time) error
}

// CustomerRepositoryFacade combines all customer-related repository interfaces.
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}

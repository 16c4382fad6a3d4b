package services

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
	"github.com/birukt/bank_ledger_app/internal/dto"
)

// CustomerReaderSvc defines read operations for customer data.
type CustomerReaderSvc interface {
	// GetCustomerByID retrieves a customer together with their account.
	GetCustomerByID(ctx context.Context, customerID string) (*dto.CustomerResponse, error)

	// LookupByPhoneNumber resolves a phone number to a customer summary,
	// used for login and transfer-recipient preview.
	LookupByPhoneNumber(ctx context.Context, phoneNumber string) (*dto.CustomerResponse, error)

	// ListCustomers returns a paginated operator view of all customers.
	ListCustomers(ctx context.Context, params dto.ListCustomersParams) (*dto.ListCustomersResponse, error)
}

// CustomerWriterSvc defines lifecycle operations for customers and accounts.
type CustomerWriterSvc interface {
	// CreateCustomerAccount onboards a customer and their account atomically.
	CreateCustomerAccount(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)

	// UpdateCustomerProfile changes name and/or phone number; never touches balance.
	UpdateCustomerProfile(ctx context.Context, customerID string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)

	// DeleteCustomer soft-deletes a customer whose account balance is zero.
	DeleteCustomer(ctx context.Context, customerID string) error

	// UpdateAccountStatus freezes or unfreezes an account (operator action).
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) error
}

// CustomerSvcFacade combines all customer-related service interfaces.
type CustomerSvcFacade interface {
	CustomerReaderSvc
	CustomerWriterSvc
}

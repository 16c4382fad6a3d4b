package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/birukt/bank_ledger_app/internal/utils"
)

// customerService manages the customer/account lifecycle. It never mutates
// balances except for the opening deposit recorded at onboarding, which the
// repository persists in the same transaction as the customer and account.
type customerService struct {
	customerRepo portsrepo.CustomerRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewCustomerService creates a new customer lifecycle service.
func NewCustomerService(customerRepo portsrepo.CustomerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.CustomerSvcFacade {
	return &customerService{
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
	}
}

// Ensure customerService implements the portssvc.CustomerSvcFacade interface
var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

// CreateCustomerAccount implements portssvc.CustomerWriterSvc.
func (s *customerService) CreateCustomerAccount(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternal)
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		CustomerID:   uuid.NewString(),
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		AccountID:    uuid.NewString(),
		PasswordHash: passwordHash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	account := domain.Account{
		AccountID:  customer.AccountID,
		CustomerID: customer.CustomerID,
		Balance:    req.OpeningBalance,
		Status:     domain.AccountActive,
		Version:    1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	// A positive opening balance is recorded as an initial deposit entry so
	// the balance always equals the sum of the account's ledger entries.
	var opening *domain.Transaction
	if req.OpeningBalance.IsPositive() {
		entry := domain.Transaction{
			TransactionID: uuid.NewString(),
			AccountID:     account.AccountID,
			Kind:          domain.Deposit,
			Amount:        req.OpeningBalance,
			CreatedAt:     now,
		}
		entry.CorrelationID = entry.TransactionID
		opening = &entry
	}

	if err := s.customerRepo.CreateCustomerWithAccount(ctx, customer, account, opening); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate phone number at onboarding", slog.String("phone", req.PhoneNumber))
			return nil, fmt.Errorf("%w: phone number already registered", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to create customer with account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger.Info("Customer onboarded",
		slog.String("customer_id", customer.CustomerID),
		slog.String("account_id", account.AccountID),
	)
	resp := dto.ToCustomerResponse(&customer, &account)
	return &resp, nil
}

// UpdateCustomerProfile implements portssvc.CustomerWriterSvc.
func (s *customerService) UpdateCustomerProfile(ctx context.Context, customerID string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.FullName != nil && *req.FullName != customer.FullName {
		customer.FullName = *req.FullName
		updated = true
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != customer.PhoneNumber {
		customer.PhoneNumber = *req.PhoneNumber
		updated = true
	}

	if updated {
		customer.LastUpdatedAt = time.Now().UTC()
		if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return nil, fmt.Errorf("%w: phone number already registered", apperrors.ErrDuplicate)
			}
			logger.Error("Failed to update customer", slog.String("customer_id", customerID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to update customer: %w", err)
		}
		logger.Info("Customer profile updated", slog.String("customer_id", customerID))
	}

	account, err := s.accountRepo.FindAccountByID(ctx, customer.AccountID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCustomerResponse(customer, account)
	return &resp, nil
}

// DeleteCustomer implements portssvc.CustomerWriterSvc. The zero-balance
// requirement is enforced under lock inside the repository transaction.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.customerRepo.DeleteCustomer(ctx, customerID, time.Now().UTC()); err != nil {
		if errors.Is(err, apperrors.ErrNonZeroBalance) {
			logger.Warn("Refusing to delete customer with funds", slog.String("customer_id", customerID))
		}
		return err
	}
	logger.Info("Customer deleted", slog.String("customer_id", customerID))
	return nil
}

// UpdateAccountStatus implements portssvc.CustomerWriterSvc.
func (s *customerService) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if status != domain.AccountActive && status != domain.AccountFrozen {
		return fmt.Errorf("%w: status must be ACTIVE or FROZEN", apperrors.ErrValidation)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status == domain.AccountClosed {
		return fmt.Errorf("%w: account %s is closed", apperrors.ErrValidation, accountID)
	}

	if err := s.accountRepo.UpdateAccountStatus(ctx, accountID, status, time.Now().UTC()); err != nil {
		logger.Error("Failed to update account status", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Account status updated", slog.String("account_id", accountID), slog.String("status", string(status)))
	return nil
}

// GetCustomerByID implements portssvc.CustomerReaderSvc.
func (s *customerService) GetCustomerByID(ctx context.Context, customerID string) (*dto.CustomerResponse, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, customer.AccountID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCustomerResponse(customer, account)
	return &resp, nil
}

// LookupByPhoneNumber implements portssvc.CustomerReaderSvc.
func (s *customerService) LookupByPhoneNumber(ctx context.Context, phoneNumber string) (*dto.CustomerResponse, error) {
	customer, err := s.customerRepo.FindCustomerByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, customer.AccountID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCustomerResponse(customer, account)
	return &resp, nil
}

// ListCustomers implements portssvc.CustomerReaderSvc.
func (s *customerService) ListCustomers(ctx context.Context, params dto.ListCustomersParams) (*dto.ListCustomersResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	customers, err := s.customerRepo.ListCustomers(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list customers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	accountIDs := make([]string, 0, len(customers))
	for _, c := range customers {
		accountIDs = append(accountIDs, c.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for customer listing", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}

	responses := make([]dto.CustomerResponse, len(customers))
	for i, c := range customers {
		customer := c
		var account *domain.Account
		if acc, ok := accounts[c.AccountID]; ok {
			account = &acc
		}
		responses[i] = dto.ToCustomerResponse(&customer, account)
	}

	return &dto.ListCustomersResponse{Customers: responses}, nil
}

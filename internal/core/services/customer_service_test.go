package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/core/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerRepositoryFacade = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, opening *domain.Transaction) error {
	args := m.Called(ctx, customer, account, opening)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteCustomer(ctx context.Context, customerID string, now time.Time) error {
	args := m.Called(ctx, customerID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type CustomerServiceTestSuite struct {
	suite.Suite
	mockCustomerRepo *MockCustomerRepository
	mockAccountRepo  *MockAccountRepository
	service          portssvc.CustomerSvcFacade
	customer         domain.Customer
	account          domain.Account
}

func (suite *CustomerServiceTestSuite) SetupTest() {
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewCustomerService(suite.mockCustomerRepo, suite.mockAccountRepo)

	suite.account = domain.Account{
		AccountID:  uuid.NewString(),
		CustomerID: uuid.NewString(),
		Balance:    decimal.NewFromInt(75),
		Status:     domain.AccountActive,
		Version:    1,
	}
	suite.customer = domain.Customer{
		CustomerID:  suite.account.CustomerID,
		FullName:    "Abebe Bikila",
		PhoneNumber: "+15550001111",
		AccountID:   suite.account.AccountID,
	}
}

// --- CreateCustomerAccount ---

func (suite *CustomerServiceTestSuite) TestCreateCustomerAccount_WithOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateCustomerRequest{
		FullName:       "Abebe Bikila",
		PhoneNumber:    "+15550001111",
		Password:       "s3cret-pass",
		OpeningBalance: decimal.NewFromInt(100),
	}

	var createdCustomer domain.Customer
	var createdAccount domain.Account
	var opening *domain.Transaction
	suite.mockCustomerRepo.On("CreateCustomerWithAccount", ctx,
		mock.AnythingOfType("domain.Customer"),
		mock.AnythingOfType("domain.Account"),
		mock.AnythingOfType("*domain.Transaction"),
	).Run(func(args mock.Arguments) {
		createdCustomer = args.Get(1).(domain.Customer)
		createdAccount = args.Get(2).(domain.Account)
		opening = args.Get(3).(*domain.Transaction)
	}).Return(nil).Once()

	resp, err := suite.service.CreateCustomerAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.NotEmpty(resp.CustomerID)
	suite.NotEmpty(resp.AccountID)
	suite.True(resp.Balance.Equal(decimal.NewFromInt(100)))

	suite.Equal(createdCustomer.AccountID, createdAccount.AccountID)
	suite.Equal(createdAccount.CustomerID, createdCustomer.CustomerID)
	suite.NotEqual(req.Password, createdCustomer.PasswordHash)

	// The opening balance is recorded as an initial deposit entry so the
	// account reconciles from its very first moment.
	suite.Require().NotNil(opening)
	suite.Equal(domain.Deposit, opening.Kind)
	suite.True(opening.Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal(createdAccount.AccountID, opening.AccountID)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestCreateCustomerAccount_ZeroOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateCustomerRequest{
		FullName:    "Abebe Bikila",
		PhoneNumber: "+15550001111",
		Password:    "s3cret-pass",
	}

	var opening *domain.Transaction
	suite.mockCustomerRepo.On("CreateCustomerWithAccount", ctx,
		mock.AnythingOfType("domain.Customer"),
		mock.AnythingOfType("domain.Account"),
		mock.Anything,
	).Run(func(args mock.Arguments) {
		if args.Get(3) != nil {
			opening = args.Get(3).(*domain.Transaction)
		}
	}).Return(nil).Once()

	resp, err := suite.service.CreateCustomerAccount(ctx, req)

	suite.Require().NoError(err)
	suite.True(resp.Balance.IsZero())
	suite.Nil(opening)
}

func (suite *CustomerServiceTestSuite) TestCreateCustomerAccount_NegativeOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateCustomerRequest{
		FullName:       "Abebe Bikila",
		PhoneNumber:    "+15550001111",
		Password:       "s3cret-pass",
		OpeningBalance: decimal.NewFromInt(-10),
	}

	_, err := suite.service.CreateCustomerAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "CreateCustomerWithAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CustomerServiceTestSuite) TestCreateCustomerAccount_DuplicatePhone() {
	ctx := context.Background()
	req := dto.CreateCustomerRequest{
		FullName:    "Abebe Bikila",
		PhoneNumber: "+15550001111",
		Password:    "s3cret-pass",
	}

	suite.mockCustomerRepo.On("CreateCustomerWithAccount", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateCustomerAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

// --- UpdateCustomerProfile ---

func (suite *CustomerServiceTestSuite) TestUpdateCustomerProfile_PhoneChange() {
	ctx := context.Background()
	newPhone := "+15552223333"

	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.customer.CustomerID).Return(&suite.customer, nil).Once()

	var updated domain.Customer
	suite.mockCustomerRepo.On("UpdateCustomer", ctx, mock.AnythingOfType("domain.Customer")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(domain.Customer)
		}).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()

	resp, err := suite.service.UpdateCustomerProfile(ctx, suite.customer.CustomerID, dto.UpdateCustomerRequest{
		PhoneNumber: &newPhone,
	})

	suite.Require().NoError(err)
	suite.Equal(newPhone, resp.PhoneNumber)
	suite.Equal(newPhone, updated.PhoneNumber)
	suite.Equal(suite.customer.FullName, updated.FullName)
}

func (suite *CustomerServiceTestSuite) TestUpdateCustomerProfile_NoChanges() {
	ctx := context.Background()

	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.customer.CustomerID).Return(&suite.customer, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()

	resp, err := suite.service.UpdateCustomerProfile(ctx, suite.customer.CustomerID, dto.UpdateCustomerRequest{})

	suite.Require().NoError(err)
	suite.Equal(suite.customer.FullName, resp.FullName)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "UpdateCustomer", mock.Anything, mock.Anything)
}

// --- DeleteCustomer ---

func (suite *CustomerServiceTestSuite) TestDeleteCustomer_Success() {
	ctx := context.Background()

	suite.mockCustomerRepo.On("DeleteCustomer", ctx, suite.customer.CustomerID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeleteCustomer(ctx, suite.customer.CustomerID)

	suite.Require().NoError(err)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestDeleteCustomer_NonZeroBalance() {
	ctx := context.Background()

	suite.mockCustomerRepo.On("DeleteCustomer", ctx, suite.customer.CustomerID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrNonZeroBalance).Once()

	err := suite.service.DeleteCustomer(ctx, suite.customer.CustomerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNonZeroBalance)
}

// --- UpdateAccountStatus ---

func (suite *CustomerServiceTestSuite) TestUpdateAccountStatus_Freeze() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountStatus", ctx, suite.account.AccountID, domain.AccountFrozen, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.UpdateAccountStatus(ctx, suite.account.AccountID, domain.AccountFrozen)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestUpdateAccountStatus_CannotClose() {
	ctx := context.Background()

	err := suite.service.UpdateAccountStatus(ctx, suite.account.AccountID, domain.AccountClosed)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CustomerServiceTestSuite) TestUpdateAccountStatus_ClosedAccount() {
	ctx := context.Background()
	closed := suite.account
	closed.Status = domain.AccountClosed

	suite.mockAccountRepo.On("FindAccountByID", ctx, closed.AccountID).Return(&closed, nil).Once()

	err := suite.service.UpdateAccountStatus(ctx, closed.AccountID, domain.AccountActive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ListCustomers ---

func (suite *CustomerServiceTestSuite) TestListCustomers_Success() {
	ctx := context.Background()
	customers := []domain.Customer{suite.customer}
	accounts := map[string]domain.Account{suite.account.AccountID: suite.account}

	suite.mockCustomerRepo.On("ListCustomers", ctx, 20, 0).Return(customers, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.account.AccountID}).Return(accounts, nil).Once()

	resp, err := suite.service.ListCustomers(ctx, dto.ListCustomersParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Customers, 1)
	suite.Equal(suite.customer.CustomerID, resp.Customers[0].CustomerID)
	suite.True(resp.Customers[0].Balance.Equal(suite.account.Balance))
}

func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceTestSuite))
}

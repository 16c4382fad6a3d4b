package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	"github.com/birukt/bank_ledger_app/internal/core/domain/events"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/core/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, now time.Time) error {
	args := m.Called(ctx, accountID, status, now)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) Apply(ctx context.Context, mut portsrepo.LedgerMutation) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, mut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) SumEntriesByAccountID(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) TransactionStats(ctx context.Context) ([]domain.TransactionStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionStat), args.Error(1)
}

// --- Mock DirectoryRepository ---
type MockDirectoryRepository struct {
	mock.Mock
}

var _ portsrepo.DirectoryRepository = (*MockDirectoryRepository)(nil)

func (m *MockDirectoryRepository) Resolve(ctx context.Context, phoneNumber string) (string, error) {
	args := m.Called(ctx, phoneNumber)
	return args.String(0), args.Error(1)
}

func (m *MockDirectoryRepository) Upsert(ctx context.Context, phoneNumber string, accountID string) error {
	args := m.Called(ctx, phoneNumber, accountID)
	return args.Error(0)
}

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

var _ portssvc.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) PublishTransactionCompleted(ctx context.Context, event events.TransactionCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLedgerRepo  *MockLedgerRepository
	mockDirectory   *MockDirectoryRepository
	mockPublisher   *MockEventPublisher
	service         portssvc.LedgerSvcFacade
	senderAccount   domain.Account
	receiverAccount domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockDirectory = new(MockDirectoryRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountRepo, suite.mockDirectory, suite.mockPublisher)

	suite.senderAccount = domain.Account{
		AccountID:  uuid.NewString(),
		CustomerID: uuid.NewString(),
		Balance:    decimal.NewFromInt(100),
		Status:     domain.AccountActive,
		Version:    1,
	}
	suite.receiverAccount = domain.Account{
		AccountID:  uuid.NewString(),
		CustomerID: uuid.NewString(),
		Balance:    decimal.NewFromInt(50),
		Status:     domain.AccountActive,
		Version:    1,
	}
}

// --- Deposit ---

func (suite *LedgerServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	amount := decimal.NewFromFloat(25.50)
	accountID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()

	var appliedMut portsrepo.LedgerMutation
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Run(func(args mock.Arguments) {
			appliedMut = args.Get(1).(portsrepo.LedgerMutation)
		}).
		Return(map[string]decimal.Decimal{accountID: decimal.NewFromFloat(125.50)}, nil).Once()
	suite.mockPublisher.On("PublishTransactionCompleted", ctx, mock.AnythingOfType("events.TransactionCompleted")).Return(nil).Once()

	newBalance, err := suite.service.Deposit(ctx, accountID, amount)

	suite.Require().NoError(err)
	suite.True(newBalance.Equal(decimal.NewFromFloat(125.50)))

	suite.Require().Len(appliedMut.Entries, 1)
	entry := appliedMut.Entries[0]
	suite.Equal(domain.Deposit, entry.Kind)
	suite.Equal(accountID, entry.AccountID)
	suite.True(entry.Amount.Equal(amount))
	suite.Equal(entry.TransactionID, entry.CorrelationID)
	suite.True(appliedMut.BalanceChanges[accountID].Equal(amount))

	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeposit_NonPositiveAmount() {
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := suite.service.Deposit(ctx, suite.senderAccount.AccountID, amount)
		suite.Require().Error(err)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeposit_TooManyFractionDigits() {
	ctx := context.Background()

	_, err := suite.service.Deposit(ctx, suite.senderAccount.AccountID, decimal.RequireFromString("10.001"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeposit_AccountNotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Deposit(ctx, accountID, decimal.NewFromInt(10))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeposit_FrozenAccount() {
	ctx := context.Background()
	frozen := suite.senderAccount
	frozen.Status = domain.AccountFrozen

	suite.mockAccountRepo.On("FindAccountByID", ctx, frozen.AccountID).Return(&frozen, nil).Once()

	_, err := suite.service.Deposit(ctx, frozen.AccountID, decimal.NewFromInt(10))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

// --- Withdraw ---

func (suite *LedgerServiceTestSuite) TestWithdraw_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(40)
	accountID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()

	var appliedMut portsrepo.LedgerMutation
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Run(func(args mock.Arguments) {
			appliedMut = args.Get(1).(portsrepo.LedgerMutation)
		}).
		Return(map[string]decimal.Decimal{accountID: decimal.NewFromInt(60)}, nil).Once()
	suite.mockPublisher.On("PublishTransactionCompleted", ctx, mock.AnythingOfType("events.TransactionCompleted")).Return(nil).Once()

	newBalance, err := suite.service.Withdraw(ctx, accountID, amount)

	suite.Require().NoError(err)
	suite.True(newBalance.Equal(decimal.NewFromInt(60)))

	suite.Require().Len(appliedMut.Entries, 1)
	suite.Equal(domain.Withdraw, appliedMut.Entries[0].Kind)
	suite.True(appliedMut.BalanceChanges[accountID].Equal(amount.Neg()))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestWithdraw_InsufficientFunds() {
	ctx := context.Background()
	accountID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()

	_, err := suite.service.Withdraw(ctx, accountID, decimal.NewFromInt(1000))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

// --- Transfer ---

func (suite *LedgerServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID
	toID := suite.receiverAccount.AccountID
	amount := decimal.NewFromInt(30)

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, toID).Return(&suite.receiverAccount, nil).Once()

	var appliedMut portsrepo.LedgerMutation
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Run(func(args mock.Arguments) {
			appliedMut = args.Get(1).(portsrepo.LedgerMutation)
		}).
		Return(map[string]decimal.Decimal{
			fromID: decimal.NewFromInt(70),
			toID:   decimal.NewFromInt(80),
		}, nil).Once()
	suite.mockPublisher.On("PublishTransactionCompleted", ctx, mock.AnythingOfType("events.TransactionCompleted")).Return(nil).Twice()

	result, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.True(result.FromBalance.Equal(decimal.NewFromInt(70)))
	suite.True(result.ToBalance.Equal(decimal.NewFromInt(80)))
	suite.NotEmpty(result.CorrelationID)

	// One debit and one credit leg, sharing the correlation id.
	suite.Require().Len(appliedMut.Entries, 2)
	debit, credit := appliedMut.Entries[0], appliedMut.Entries[1]
	suite.Equal(domain.TransferOut, debit.Kind)
	suite.Equal(domain.TransferIn, credit.Kind)
	suite.Equal(debit.CorrelationID, credit.CorrelationID)
	suite.Equal(result.CorrelationID, debit.CorrelationID)
	suite.Equal(toID, debit.CounterpartyID)
	suite.Equal(fromID, credit.CounterpartyID)

	// Deltas are exact opposites.
	suite.True(appliedMut.BalanceChanges[fromID].Equal(amount.Neg()))
	suite.True(appliedMut.BalanceChanges[toID].Equal(amount))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestTransfer_ByPhoneNumber() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID
	toID := suite.receiverAccount.AccountID
	phone := "+15550001111"

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()
	suite.mockDirectory.On("Resolve", ctx, phone).Return(toID, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, toID).Return(&suite.receiverAccount, nil).Once()
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Return(map[string]decimal.Decimal{
			fromID: decimal.NewFromInt(90),
			toID:   decimal.NewFromInt(60),
		}, nil).Once()
	suite.mockPublisher.On("PublishTransactionCompleted", ctx, mock.AnythingOfType("events.TransactionCompleted")).Return(nil).Twice()

	result, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToPhoneNumber: phone,
		Amount:        decimal.NewFromInt(10),
	})

	suite.Require().NoError(err)
	suite.Equal(toID, result.ToAccountID)
	suite.mockDirectory.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestTransfer_UnknownPhoneNumber() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID
	phone := "+15559998888"

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()
	suite.mockDirectory.On("Resolve", ctx, phone).Return("", apperrors.ErrNotFound).Once()

	_, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToPhoneNumber: phone,
		Amount:        decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_BothRecipientFields() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()

	_, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToAccountID:   suite.receiverAccount.AccountID,
		ToPhoneNumber: "+15550001111",
		Amount:        decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_SelfTransfer() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()

	_, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToAccountID:   fromID,
		Amount:        decimal.NewFromInt(10),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSelfTransfer)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	fromID := suite.senderAccount.AccountID
	toID := suite.receiverAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, fromID).Return(&suite.senderAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, toID).Return(&suite.receiverAccount, nil).Once()

	_, err := suite.service.Transfer(ctx, dto.TransferRequest{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        decimal.NewFromInt(500),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Apply", mock.Anything, mock.Anything)
}

// --- Conflict retries ---

func (suite *LedgerServiceTestSuite) TestDeposit_RetriesConflictThenSucceeds() {
	ctx := context.Background()
	accountID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Return(nil, apperrors.ErrConflict).Twice()
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Return(map[string]decimal.Decimal{accountID: decimal.NewFromInt(110)}, nil).Once()
	suite.mockPublisher.On("PublishTransactionCompleted", ctx, mock.AnythingOfType("events.TransactionCompleted")).Return(nil).Once()

	newBalance, err := suite.service.Deposit(ctx, accountID, decimal.NewFromInt(10))

	suite.Require().NoError(err)
	suite.True(newBalance.Equal(decimal.NewFromInt(110)))
	suite.mockLedgerRepo.AssertNumberOfCalls(suite.T(), "Apply", 3)
}

func (suite *LedgerServiceTestSuite) TestDeposit_ConflictRetriesExhausted() {
	ctx := context.Background()
	accountID := suite.senderAccount.AccountID

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()
	suite.mockLedgerRepo.On("Apply", ctx, mock.AnythingOfType("repositories.LedgerMutation")).
		Return(nil, apperrors.ErrConflict).Times(4)

	_, err := suite.service.Deposit(ctx, accountID, decimal.NewFromInt(10))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedgerRepo.AssertNumberOfCalls(suite.T(), "Apply", 4)
	suite.mockPublisher.AssertNotCalled(suite.T(), "PublishTransactionCompleted", mock.Anything, mock.Anything)
}

// --- GetHistory ---

func (suite *LedgerServiceTestSuite) TestGetHistory_Success() {
	ctx := context.Background()
	accountID := suite.senderAccount.AccountID
	entries := []domain.Transaction{
		{TransactionID: uuid.NewString(), AccountID: accountID, Kind: domain.Deposit, Amount: decimal.NewFromInt(100), Sequence: 2},
		{TransactionID: uuid.NewString(), AccountID: accountID, Kind: domain.Withdraw, Amount: decimal.NewFromInt(20), Sequence: 1},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(&suite.senderAccount, nil).Once()
	suite.mockLedgerRepo.On("ListTransactionsByAccountID", ctx, accountID, 20, (*string)(nil)).
		Return(entries, nil, nil).Once()

	resp, err := suite.service.GetHistory(ctx, accountID, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Transactions, 2)
	suite.Equal("DEPOSIT", resp.Transactions[0].Kind)
	suite.Nil(resp.NextToken)
}

func (suite *LedgerServiceTestSuite) TestGetHistory_UnknownAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetHistory(ctx, accountID, dto.ListTransactionsParams{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ListTransactionsByAccountID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

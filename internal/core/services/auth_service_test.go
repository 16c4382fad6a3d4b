package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/core/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/platform/config"
	"github.com/birukt/bank_ledger_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockCustomerRepo *MockCustomerRepository
	mockAccountRepo  *MockAccountRepository
	service          portssvc.AuthSvcFacade
	customer         domain.Customer
	account          domain.Account
	password         string
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)

	cfg := &config.Config{
		JWTSecret:         "test-secret-key",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "bank-ledger-test",
	}
	suite.service = services.NewAuthService(cfg, suite.mockCustomerRepo, suite.mockAccountRepo)

	suite.password = "s3cret-pass"
	hash, err := utils.HashPassword(suite.password)
	suite.Require().NoError(err)

	suite.account = domain.Account{
		AccountID: uuid.NewString(),
		Balance:   decimal.NewFromInt(10),
		Status:    domain.AccountActive,
	}
	suite.customer = domain.Customer{
		CustomerID:   uuid.NewString(),
		FullName:     "Abebe Bikila",
		PhoneNumber:  "+15550001111",
		AccountID:    suite.account.AccountID,
		PasswordHash: hash,
	}
	suite.account.CustomerID = suite.customer.CustomerID
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()

	suite.mockCustomerRepo.On("FindCustomerByPhone", ctx, suite.customer.PhoneNumber).Return(&suite.customer, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()

	resp, err := suite.service.Login(ctx, dto.LoginRequest{
		PhoneNumber: suite.customer.PhoneNumber,
		Password:    suite.password,
	})

	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.Equal(suite.customer.CustomerID, resp.Customer.CustomerID)
	suite.True(resp.ExpiresAt.After(time.Now()))

	// The token must carry the customer id as subject.
	claims, err := utils.ParseAndValidateJWT(resp.AccessToken, "test-secret-key")
	suite.Require().NoError(err)
	suite.Equal(suite.customer.CustomerID, claims.Subject)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()

	suite.mockCustomerRepo.On("FindCustomerByPhone", ctx, suite.customer.PhoneNumber).Return(&suite.customer, nil).Once()

	_, err := suite.service.Login(ctx, dto.LoginRequest{
		PhoneNumber: suite.customer.PhoneNumber,
		Password:    "wrong-password",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownPhoneNumber() {
	ctx := context.Background()
	phone := "+15559998888"

	suite.mockCustomerRepo.On("FindCustomerByPhone", ctx, phone).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Login(ctx, dto.LoginRequest{
		PhoneNumber: phone,
		Password:    "whatever",
	})

	// Unknown numbers and wrong passwords fail identically.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/birukt/bank_ledger_app/internal/platform/config"
	"github.com/birukt/bank_ledger_app/internal/utils"
)

// authService authenticates customers by phone number and password and
// issues JWT access tokens.
type authService struct {
	cfg          *config.Config
	customerRepo portsrepo.CustomerRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewAuthService creates a new authentication service.
func NewAuthService(cfg *config.Config, customerRepo portsrepo.CustomerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.AuthSvcFacade {
	return &authService{
		cfg:          cfg,
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login implements portssvc.AuthSvcFacade.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	customer, err := s.customerRepo.FindCustomerByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same failure as a wrong password so the response does not
			// reveal whether the phone number is registered.
			return nil, apperrors.ErrUnauthorized
		}
		logger.Error("Failed to look up customer for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, customer.PasswordHash) {
		logger.Warn("Login failed: bad credentials", slog.String("customer_id", customer.CustomerID))
		return nil, apperrors.ErrUnauthorized
	}

	token, err := utils.GenerateJWT(customer.CustomerID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to generate access token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: failed to generate token", apperrors.ErrInternal)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, customer.AccountID)
	if err != nil {
		return nil, err
	}

	logger.Info("Login successful", slog.String("customer_id", customer.CustomerID))
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.cfg.JWTExpiryDuration),
		Customer:    dto.ToCustomerResponse(customer, account),
	}, nil
}

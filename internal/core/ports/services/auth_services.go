package services

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/dto"
)

// AuthSvcFacade authenticates customers by phone number and password.
type AuthSvcFacade interface {
	// Login verifies the credentials and issues a JWT access token. Unknown
	// phone numbers and wrong passwords both fail with ErrUnauthorized so the
	// response does not leak which part was wrong.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

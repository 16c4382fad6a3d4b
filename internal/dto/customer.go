package dto

import (
	"time"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest defines the data needed to onboard a customer with
// their account. OpeningBalance must be zero or positive.
type CreateCustomerRequest struct {
	FullName       string          `json:"fullName" binding:"required"`
	PhoneNumber    string          `json:"phoneNumber" binding:"required,phone"`
	Password       string          `json:"password" binding:"required,min=6"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// UpdateCustomerRequest defines the profile fields a customer may change.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateCustomerRequest struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,phone"`
}

// UpdateAccountStatusRequest changes an account's status (operator action).
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE FROZEN"`
}

// CustomerResponse defines the data returned for a customer.
type CustomerResponse struct {
	CustomerID    string          `json:"customerID"`
	FullName      string          `json:"fullName"`
	PhoneNumber   string          `json:"phoneNumber"`
	AccountID     string          `json:"accountID"`
	Balance       decimal.Decimal `json:"balance"`
	AccountStatus string          `json:"accountStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToCustomerResponse converts a customer and their account to the API shape.
func ToCustomerResponse(c *domain.Customer, a *domain.Account) CustomerResponse {
	resp := CustomerResponse{
		CustomerID:  c.CustomerID,
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		AccountID:   c.AccountID,
		CreatedAt:   c.CreatedAt,
	}
	if a != nil {
		resp.Balance = a.Balance
		resp.AccountStatus = string(a.Status)
	}
	return resp
}

// ListCustomersParams defines query parameters for the operator listing.
type ListCustomersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListCustomersResponse wraps the operator customer listing.
type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

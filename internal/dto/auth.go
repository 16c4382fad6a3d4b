package dto

import "time"

// LoginRequest carries phone-number login credentials.
type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,phone"`
	Password    string `json:"password" binding:"required"`
}

// LoginResponse returns the issued access token and the customer summary.
type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	Customer    CustomerResponse `json:"customer"`
}

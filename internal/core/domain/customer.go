package domain

import "time"

// Customer represents an account holder. Each customer owns exactly one
// account; the phone number is unique and doubles as the login key.
type Customer struct {
	CustomerID   string `json:"customerID"` // Primary Key (UUID)
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"` // Unique, login key
	AccountID    string `json:"accountID"`   // FK -> accounts.account_id (1-1)
	PasswordHash string `json:"-"`           // bcrypt hash, never serialized
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

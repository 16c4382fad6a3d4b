package apperrors

import "errors"

// ErrNotFound indicates that a requested resource (account, customer,
// transfer recipient) could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates a withdrawal or transfer exceeding the account balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSelfTransfer indicates a transfer where sender and receiver resolve to the same account.
var ErrSelfTransfer = errors.New("self transfer not allowed")

// ErrNonZeroBalance indicates an attempt to delete a customer whose account still holds funds.
var ErrNonZeroBalance = errors.New("account balance is not zero")

// ErrConflict indicates a concurrent-update conflict or lock-acquisition
// timeout. Operations failing with ErrConflict are safe to retry.
var ErrConflict = errors.New("conflicting concurrent operation")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected store or infrastructure failure.
var ErrInternal = errors.New("internal error")

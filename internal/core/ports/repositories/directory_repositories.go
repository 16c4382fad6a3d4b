package repositories

import "context"

// DirectoryRepository resolves phone numbers to account ids. It is the read
// path behind transfer-by-phone and login lookups. Writes normally happen
// inside customer transactions so the directory can never drift from the
// customer records; Upsert exists for repair tooling and the memory store.
type DirectoryRepository interface {
	// Resolve returns the account id linked to the phone number, or
	// ErrNotFound when the phone number has no active mapping.
	Resolve(ctx context.Context, phoneNumber string) (string, error)

	// Upsert creates or replaces the mapping for a phone number.
	Upsert(ctx context.Context, phoneNumber string, accountID string) error
}

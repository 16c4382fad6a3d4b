package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDirectoryRepository struct {
	BaseRepository
}

// NewDirectoryRepository creates a new repository for the phone directory.
func NewDirectoryRepository(pool *pgxpool.Pool) portsrepo.DirectoryRepository {
	return &PgxDirectoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDirectoryRepository implements portsrepo.DirectoryRepository
var _ portsrepo.DirectoryRepository = (*PgxDirectoryRepository)(nil)

// Resolve returns the account id mapped to the phone number.
func (r *PgxDirectoryRepository) Resolve(ctx context.Context, phoneNumber string) (string, error) {
	query := `SELECT account_id FROM directory WHERE phone_number = $1;`

	var accountID string
	if err := r.Pool.QueryRow(ctx, query, phoneNumber).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve phone number: %w", err)
	}
	return accountID, nil
}

// Upsert creates or replaces the mapping for a phone number. Normal writes go
// through the customer repository transactions; this exists for repair tooling.
func (r *PgxDirectoryRepository) Upsert(ctx context.Context, phoneNumber string, accountID string) error {
	query := `
		INSERT INTO directory (phone_number, account_id, last_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone_number) DO UPDATE
		SET account_id = EXCLUDED.account_id, last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := r.Pool.Exec(ctx, query, phoneNumber, accountID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert directory mapping: %w", mapPgError(err))
	}
	return nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCustomerRepository struct {
	BaseRepository
}

// NewCustomerRepository creates a new repository for customer data.
func NewCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCustomerRepository implements portsrepo.CustomerRepositoryFacade
var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

const customerColumns = `customer_id, full_name, phone_number, account_id, password_hash, created_at, last_updated_at, deleted_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.CustomerID,
		&c.FullName,
		&c.PhoneNumber,
		&c.AccountID,
		&c.PasswordHash,
		&c.CreatedAt,
		&c.LastUpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindCustomerByID retrieves a customer by ID; soft-deleted rows are invisible.
func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1 AND deleted_at IS NULL;`

	c, err := scanCustomer(r.Pool.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find customer by ID %s: %w", customerID, err)
	}
	return c, nil
}

// FindCustomerByPhone retrieves a customer by phone number.
func (r *PgxCustomerRepository) FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone_number = $1 AND deleted_at IS NULL;`

	c, err := scanCustomer(r.Pool.QueryRow(ctx, query, phoneNumber))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find customer by phone number: %w", err)
	}
	return c, nil
}

// ListCustomers retrieves a page of customers ordered by creation time.
func (r *PgxCustomerRepository) ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE deleted_at IS NULL
		ORDER BY created_at, customer_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}
	return customers, nil
}

// CreateCustomerWithAccount inserts the customer, their account, the phone
// directory mapping and the opening ledger entry in one transaction. Partial
// onboarding is therefore impossible: either all four rows exist or none do.
func (r *PgxCustomerRepository) CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, opening *domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accountQuery := `
		INSERT INTO accounts (account_id, customer_id, balance, status, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, accountQuery,
		account.AccountID, account.CustomerID, account.Balance, account.Status,
		account.Version, account.CreatedAt, account.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", mapPgError(err))
	}

	customerQuery := `
		INSERT INTO customers (customer_id, full_name, phone_number, account_id, password_hash, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, customerQuery,
		customer.CustomerID, customer.FullName, customer.PhoneNumber, customer.AccountID,
		customer.PasswordHash, customer.CreatedAt, customer.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", mapPgError(err))
	}

	directoryQuery := `INSERT INTO directory (phone_number, account_id, last_updated_at) VALUES ($1, $2, $3);`
	if _, err := tx.Exec(ctx, directoryQuery, customer.PhoneNumber, account.AccountID, customer.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert directory mapping: %w", mapPgError(err))
	}

	if opening != nil {
		openingQuery := `
			INSERT INTO transactions (transaction_id, account_id, kind, amount, counterparty_id, correlation_id, created_at)
			VALUES ($1, $2, $3, $4, NULL, $5, $6);
		`
		_, err := tx.Exec(ctx, openingQuery,
			opening.TransactionID, opening.AccountID, opening.Kind, opening.Amount,
			opening.CorrelationID, opening.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert opening ledger entry: %w", mapPgError(err))
		}
	}

	return r.Commit(ctx, tx)
}

// UpdateCustomer updates name and phone number. A phone change rewrites the
// directory mapping in the same transaction so lookups never see a stale row.
func (r *PgxCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var oldPhone string
	currentQuery := `SELECT phone_number FROM customers WHERE customer_id = $1 AND deleted_at IS NULL FOR UPDATE;`
	if err := tx.QueryRow(ctx, currentQuery, customer.CustomerID).Scan(&oldPhone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load customer %s for update: %w", customer.CustomerID, mapPgError(err))
	}

	updateQuery := `
		UPDATE customers
		SET full_name = $2, phone_number = $3, last_updated_at = $4
		WHERE customer_id = $1 AND deleted_at IS NULL;
	`
	if _, err := tx.Exec(ctx, updateQuery, customer.CustomerID, customer.FullName, customer.PhoneNumber, customer.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to update customer %s: %w", customer.CustomerID, mapPgError(err))
	}

	if oldPhone != customer.PhoneNumber {
		if _, err := tx.Exec(ctx, `DELETE FROM directory WHERE phone_number = $1;`, oldPhone); err != nil {
			return fmt.Errorf("failed to remove old directory mapping: %w", mapPgError(err))
		}
		directoryQuery := `INSERT INTO directory (phone_number, account_id, last_updated_at) VALUES ($1, $2, $3);`
		if _, err := tx.Exec(ctx, directoryQuery, customer.PhoneNumber, customer.AccountID, customer.LastUpdatedAt); err != nil {
			return fmt.Errorf("failed to insert new directory mapping: %w", mapPgError(err))
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteCustomer soft-deletes a customer whose balance is exactly zero. The
// balance check happens under a row lock so no deposit can land between the
// check and the close.
func (r *PgxCustomerRepository) DeleteCustomer(ctx context.Context, customerID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var accountID, phoneNumber string
	customerQuery := `SELECT account_id, phone_number FROM customers WHERE customer_id = $1 AND deleted_at IS NULL FOR UPDATE;`
	if err := tx.QueryRow(ctx, customerQuery, customerID).Scan(&accountID, &phoneNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load customer %s for delete: %w", customerID, mapPgError(err))
	}

	var balanceIsZero bool
	accountQuery := `SELECT balance = 0 FROM accounts WHERE account_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, accountQuery, accountID).Scan(&balanceIsZero); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock account %s for delete: %w", accountID, mapPgError(err))
	}
	if !balanceIsZero {
		return fmt.Errorf("%w: account %s", apperrors.ErrNonZeroBalance, accountID)
	}

	if _, err := tx.Exec(ctx, `UPDATE customers SET deleted_at = $2, last_updated_at = $2 WHERE customer_id = $1;`, customerID, now); err != nil {
		return fmt.Errorf("failed to soft-delete customer %s: %w", customerID, mapPgError(err))
	}
	closeQuery := `UPDATE accounts SET status = $2, last_updated_at = $3 WHERE account_id = $1;`
	if _, err := tx.Exec(ctx, closeQuery, accountID, domain.AccountClosed, now); err != nil {
		return fmt.Errorf("failed to close account %s: %w", accountID, mapPgError(err))
	}
	if _, err := tx.Exec(ctx, `DELETE FROM directory WHERE phone_number = $1;`, phoneNumber); err != nil {
		return fmt.Errorf("failed to remove directory mapping: %w", mapPgError(err))
	}

	return r.Commit(ctx, tx)
}

package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	"github.com/birukt/bank_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
	lockTimeout time.Duration
}

// NewLedgerRepository creates a new repository for ledger entries and balance
// mutations. lockTimeout bounds how long Apply waits for row locks before the
// attempt fails with a retryable conflict.
func NewLedgerRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		lockTimeout:    lockTimeout,
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, account_id, kind, amount, counterparty_id, correlation_id, sequence, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var counterparty *string
	err := row.Scan(
		&txn.TransactionID,
		&txn.AccountID,
		&txn.Kind,
		&txn.Amount,
		&counterparty,
		&txn.CorrelationID,
		&txn.Sequence,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if counterparty != nil {
		txn.CounterpartyID = *counterparty
	}
	return &txn, nil
}

// Apply persists one ledger mutation atomically: it locks every touched
// account in ascending account-id order, verifies each account can transact
// and that no balance goes negative, writes the new balances and appends the
// entries with store-assigned sequence numbers. Lock waits are capped by the
// configured lock timeout; a timed-out wait surfaces as ErrConflict so the
// caller can retry.
func (r *PgxLedgerRepository) Apply(ctx context.Context, mut portsrepo.LedgerMutation) (map[string]decimal.Decimal, error) {
	if len(mut.BalanceChanges) == 0 {
		return nil, fmt.Errorf("%w: ledger mutation has no balance changes", apperrors.ErrValidation)
	}

	accountIDs := make([]string, 0, len(mut.BalanceChanges))
	for id := range mut.BalanceChanges {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Bound lock waits for this transaction only. The duration comes from
	// configuration, never from user input.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", mapPgError(err))
	}

	// ORDER BY gives every writer the same lock acquisition order, which rules
	// out lock-order deadlocks between concurrent transfers.
	lockQuery := `
		SELECT account_id, balance, status, version
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", mapPgError(err))
	}

	type lockedAccount struct {
		balance decimal.Decimal
		status  domain.AccountStatus
		version int64
	}
	locked := make(map[string]lockedAccount, len(accountIDs))
	for rows.Next() {
		var id string
		var la lockedAccount
		if err := rows.Scan(&id, &la.balance, &la.status, &la.version); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan locked account: %w", mapPgError(err))
		}
		locked[id] = la
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", mapPgError(err))
	}

	now := time.Now().UTC()
	newBalances := make(map[string]decimal.Decimal, len(accountIDs))
	for _, id := range accountIDs {
		la, ok := locked[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if la.status != domain.AccountActive {
			return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, id, la.status)
		}
		newBalance := la.balance.Add(mut.BalanceChanges[id])
		if newBalance.IsNegative() {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, id)
		}
		newBalances[id] = newBalance

		updateQuery := `
			UPDATE accounts
			SET balance = $2, version = version + 1, last_updated_at = $3
			WHERE account_id = $1;
		`
		if _, err := tx.Exec(ctx, updateQuery, id, newBalance, now); err != nil {
			return nil, fmt.Errorf("failed to update balance for account %s: %w", id, mapPgError(err))
		}
	}

	insertQuery := `
		INSERT INTO transactions (transaction_id, account_id, kind, amount, counterparty_id, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sequence;
	`
	for i := range mut.Entries {
		entry := &mut.Entries[i]
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		var counterparty *string
		if entry.CounterpartyID != "" {
			counterparty = &entry.CounterpartyID
		}
		err := tx.QueryRow(ctx, insertQuery,
			entry.TransactionID,
			entry.AccountID,
			entry.Kind,
			entry.Amount,
			counterparty,
			entry.CorrelationID,
			entry.CreatedAt,
		).Scan(&entry.Sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ledger entry %s: %w", entry.TransactionID, mapPgError(err))
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, mapPgError(err)
	}
	return newBalances, nil
}

// ListTransactionsByAccountID fetches a page of ledger entries for an account,
// most recent first. Pagination uses an opaque keyset token so a page boundary
// stays stable while new entries are appended.
func (r *PgxLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		createdAt, sequence, err := pagination.DecodeHistoryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		baseQuery += ` AND (created_at, sequence) < ($2, $3)`
		args = append(args, createdAt, sequence)
	}

	// Fetch one extra row to decide whether another page exists.
	baseQuery += fmt.Sprintf(` ORDER BY created_at DESC, sequence DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		entries = append(entries, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var newNextToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeHistoryToken(last.CreatedAt, last.Sequence)
		newNextToken = &token
	}
	return entries, newNextToken, nil
}

// SumEntriesByAccountID returns the signed sum of every entry on the account.
// Under the reconciliation invariant this always equals the stored balance.
func (r *PgxLedgerRepository) SumEntriesByAccountID(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind IN ('WITHDRAW', 'TRANSFER_OUT') THEN -amount ELSE amount END), 0)
		FROM transactions
		WHERE account_id = $1;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum entries for account %s: %w", accountID, err)
	}
	return sum, nil
}

// TransactionStats aggregates entry counts and totals per kind.
func (r *PgxLedgerRepository) TransactionStats(ctx context.Context) ([]domain.TransactionStat, error) {
	query := `
		SELECT kind, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		GROUP BY kind
		ORDER BY kind;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction stats: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.TransactionStat, 0, 4)
	for rows.Next() {
		var s domain.TransactionStat
		if err := rows.Scan(&s.Kind, &s.Count, &s.Total); err != nil {
			return nil, fmt.Errorf("failed to scan transaction stat row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction stat rows: %w", err)
	}
	return stats, nil
}

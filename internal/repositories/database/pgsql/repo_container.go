package pgsql

import (
	"time"

	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the postgres-backed repositories over a shared
// connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   NewAccountRepository(pool),
		LedgerRepo:    NewLedgerRepository(pool, lockTimeout),
		CustomerRepo:  NewCustomerRepository(pool),
		DirectoryRepo: NewDirectoryRepository(pool),
	}
}

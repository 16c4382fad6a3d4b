package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/birukt/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
)

// Store is an in-memory implementation of every repository port. It backs
// local development when no database is configured and the concurrency tests.
// Balance mutations go through the same lock-ordering discipline as the
// postgres store: per-account locks taken in ascending id order with a
// bounded wait.
type Store struct {
	mu sync.RWMutex

	accounts  map[string]*domain.Account
	customers map[string]*domain.Customer
	phoneIdx  map[string]string // phone number -> customer id
	directory map[string]string // phone number -> account id
	entries   map[string][]domain.Transaction

	seq         atomic.Int64
	locks       *lockManager
	lockTimeout time.Duration
}

// NewStore creates an empty in-memory store. lockTimeout bounds how long a
// balance mutation waits for account locks before failing with a conflict.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		customers:   make(map[string]*domain.Customer),
		phoneIdx:    make(map[string]string),
		directory:   make(map[string]string),
		entries:     make(map[string][]domain.Transaction),
		locks:       newLockManager(),
		lockTimeout: lockTimeout,
	}
}

// NewRepositoryProvider exposes a single store through all repository ports.
func NewRepositoryProvider(lockTimeout time.Duration) portsrepo.RepositoryProvider {
	s := NewStore(lockTimeout)
	return portsrepo.RepositoryProvider{
		AccountRepo:   s,
		LedgerRepo:    s,
		CustomerRepo:  s,
		DirectoryRepo: s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade   = (*Store)(nil)
	_ portsrepo.CustomerRepositoryFacade = (*Store)(nil)
	_ portsrepo.DirectoryRepository      = (*Store)(nil)
)

func (s *Store) nextSequence() int64 {
	return s.seq.Add(1)
}

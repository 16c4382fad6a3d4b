package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/birukt/bank_ledger_app/internal/core/domain"
	domainevents "github.com/birukt/bank_ledger_app/internal/core/domain/events"
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
)

const (
	// maxConflictRetries bounds how often a conflicting mutation is retried
	// before ErrConflict is surfaced to the caller.
	maxConflictRetries = 3
	conflictBackoff    = 25 * time.Millisecond
)

var transactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bank_ledger",
		Name:      "transactions_total",
		Help:      "Total number of committed ledger entries by kind",
	},
	[]string{"kind"},
)

// ledgerService is the balance-mutation core: it reads account state,
// validates, and applies balance changes together with their ledger entries
// through the repository's atomic Apply.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	directory   portsrepo.DirectoryRepository
	publisher   portssvc.EventPublisher
}

// NewLedgerService creates the ledger engine.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, directory portsrepo.DirectoryRepository, publisher portssvc.EventPublisher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		directory:   directory,
		publisher:   publisher,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, amount)
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount %s has more than 2 fraction digits", apperrors.ErrValidation, amount)
	}
	return nil
}

// transactableAccount fetches the account and rejects operations on frozen or
// closed accounts. The check is advisory; the repository re-verifies account
// state under lock when the mutation is applied.
func (s *ledgerService) transactableAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.CanTransact() {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, accountID, account.Status)
	}
	return account, nil
}

// apply runs the mutation through the repository, retrying bounded times on
// ErrConflict with linear backoff. Cancellation aborts between attempts; the
// repository guarantees an interrupted attempt applies nothing.
func (s *ledgerService) apply(ctx context.Context, mut portsrepo.LedgerMutation) (map[string]decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * conflictBackoff):
			}
			logger.Debug("Retrying conflicting ledger mutation", slog.Int("attempt", attempt))
		}

		balances, err := s.ledgerRepo.Apply(ctx, mut)
		if err == nil {
			return balances, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	logger.Warn("Ledger mutation retries exhausted", slog.String("error", lastErr.Error()))
	return nil, lastErr
}

func (s *ledgerService) publish(ctx context.Context, entry domain.Transaction) {
	transactionsTotal.WithLabelValues(string(entry.Kind)).Inc()
	if s.publisher == nil {
		return
	}
	event := domainevents.TransactionCompleted{
		CorrelationID: entry.CorrelationID,
		Kind:          string(entry.Kind),
		AccountID:     entry.AccountID,
		Counterparty:  entry.CounterpartyID,
		Amount:        entry.Amount,
		OccurredAt:    entry.CreatedAt,
	}
	if err := s.publisher.PublishTransactionCompleted(ctx, event); err != nil {
		// Best effort only; the mutation is already committed.
		middleware.GetLoggerFromCtx(ctx).Error("Failed to publish transaction event",
			slog.String("correlation_id", entry.CorrelationID), slog.String("error", err.Error()))
	}
}

// Deposit implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if _, err := s.transactableAccount(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	entry := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     accountID,
		Kind:          domain.Deposit,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}
	entry.CorrelationID = entry.TransactionID

	balances, err := s.apply(ctx, portsrepo.LedgerMutation{
		Entries:        []domain.Transaction{entry},
		BalanceChanges: map[string]decimal.Decimal{accountID: amount},
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.publish(ctx, entry)
	logger.Info("Deposit applied", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	return balances[accountID], nil
}

// Withdraw implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	account, err := s.transactableAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	// Early rejection with a friendly message; the repository re-checks under
	// lock, so a concurrent withdrawal can still fail with the same error.
	if amount.GreaterThan(account.Balance) {
		return decimal.Zero, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, account.Balance, amount)
	}

	entry := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     accountID,
		Kind:          domain.Withdraw,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	}
	entry.CorrelationID = entry.TransactionID

	balances, err := s.apply(ctx, portsrepo.LedgerMutation{
		Entries:        []domain.Transaction{entry},
		BalanceChanges: map[string]decimal.Decimal{accountID: amount.Neg()},
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.publish(ctx, entry)
	logger.Info("Withdrawal applied", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	return balances[accountID], nil
}

// resolveRecipient returns the receiving account id from an explicit id or a
// phone number looked up through the directory.
func (s *ledgerService) resolveRecipient(ctx context.Context, req dto.TransferRequest) (string, error) {
	switch {
	case req.ToAccountID != "" && req.ToPhoneNumber != "":
		return "", fmt.Errorf("%w: specify either toAccountID or toPhoneNumber, not both", apperrors.ErrValidation)
	case req.ToAccountID != "":
		return req.ToAccountID, nil
	case req.ToPhoneNumber != "":
		accountID, err := s.directory.Resolve(ctx, req.ToPhoneNumber)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", fmt.Errorf("%w: no account linked to phone number", apperrors.ErrNotFound)
			}
			return "", err
		}
		return accountID, nil
	default:
		return "", fmt.Errorf("%w: transfer recipient is required", apperrors.ErrValidation)
	}
}

// Transfer implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Transfer(ctx context.Context, req dto.TransferRequest) (*dto.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	sender, err := s.transactableAccount(ctx, req.FromAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("sender: %w", err)
		}
		return nil, err
	}

	toAccountID, err := s.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}
	if toAccountID == req.FromAccountID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrSelfTransfer, toAccountID)
	}
	if _, err := s.transactableAccount(ctx, toAccountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("recipient: %w", err)
		}
		return nil, err
	}
	if req.Amount.GreaterThan(sender.Balance) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, sender.Balance, req.Amount)
	}

	now := time.Now().UTC()
	correlationID := uuid.NewString()
	debit := domain.Transaction{
		TransactionID:  uuid.NewString(),
		AccountID:      req.FromAccountID,
		Kind:           domain.TransferOut,
		Amount:         req.Amount,
		CounterpartyID: toAccountID,
		CorrelationID:  correlationID,
		CreatedAt:      now,
	}
	credit := domain.Transaction{
		TransactionID:  uuid.NewString(),
		AccountID:      toAccountID,
		Kind:           domain.TransferIn,
		Amount:         req.Amount,
		CounterpartyID: req.FromAccountID,
		CorrelationID:  correlationID,
		CreatedAt:      now,
	}

	balances, err := s.apply(ctx, portsrepo.LedgerMutation{
		Entries: []domain.Transaction{debit, credit},
		BalanceChanges: map[string]decimal.Decimal{
			req.FromAccountID: req.Amount.Neg(),
			toAccountID:       req.Amount,
		},
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, debit)
	s.publish(ctx, credit)
	logger.Info("Transfer applied",
		slog.String("from_account_id", req.FromAccountID),
		slog.String("to_account_id", toAccountID),
		slog.String("amount", req.Amount.String()),
		slog.String("correlation_id", correlationID),
	)

	return &dto.TransferResult{
		FromAccountID: req.FromAccountID,
		ToAccountID:   toAccountID,
		FromBalance:   balances[req.FromAccountID],
		ToBalance:     balances[toAccountID],
		CorrelationID: correlationID,
	}, nil
}

// GetHistory implements portssvc.LedgerReaderSvc.
func (s *ledgerService) GetHistory(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// An unknown account is an error; an account without entries is not.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.ledgerRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions by account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

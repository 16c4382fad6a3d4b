package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
)

// reportingService exposes operator aggregates and the reconciliation audit.
type reportingService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TransactionStats implements portssvc.ReportingSvcFacade.
func (s *reportingService) TransactionStats(ctx context.Context) (*dto.TransactionStatsResponse, error) {
	stats, err := s.ledgerRepo.TransactionStats(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to aggregate transaction stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate transaction stats: %w", err)
	}
	return &dto.TransactionStatsResponse{Stats: stats}, nil
}

// ReconcileAccount implements portssvc.ReportingSvcFacade. It recomputes the
// signed sum of the account's ledger entries and compares it with the stored
// balance; the two must always be equal.
func (s *reportingService) ReconcileAccount(ctx context.Context, accountID string) (*dto.ReconciliationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := s.ledgerRepo.SumEntriesByAccountID(ctx, accountID)
	if err != nil {
		logger.Error("Failed to sum ledger entries", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	balanced := account.Balance.Equal(sum)
	if !balanced {
		logger.Error("Reconciliation mismatch",
			slog.String("account_id", accountID),
			slog.String("balance", account.Balance.String()),
			slog.String("ledger_sum", sum.String()),
		)
	}

	return &dto.ReconciliationResult{
		AccountID: accountID,
		Balance:   account.Balance,
		LedgerSum: sum,
		Balanced:  balanced,
	}, nil
}

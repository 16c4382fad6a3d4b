package services

import (
	"context"

	"github.com/birukt/bank_ledger_app/internal/dto"
)

// ReportingSvcFacade provides operator-facing aggregates and audits.
type ReportingSvcFacade interface {
	// TransactionStats returns entry counts and totals per transaction kind.
	TransactionStats(ctx context.Context) (*dto.TransactionStatsResponse, error)

	// ReconcileAccount recomputes the signed sum of an account's ledger
	// entries and compares it with the stored balance.
	ReconcileAccount(ctx context.Context, accountID string) (*dto.ReconciliationResult, error)
}

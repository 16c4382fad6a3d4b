package services

import (
	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/platform/config"
)

// NewContainer creates a service container with properly initialized dependencies.
func NewContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger:    NewLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.DirectoryRepo, publisher),
		Customer:  NewCustomerService(repos.CustomerRepo, repos.AccountRepo),
		Auth:      NewAuthService(cfg, repos.CustomerRepo, repos.AccountRepo),
		Reporting: NewReportingService(repos.AccountRepo, repos.LedgerRepo),
	}
}

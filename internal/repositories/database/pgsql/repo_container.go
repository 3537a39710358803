package pgsql

import (
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	requestRepo := newPgxRequestRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	rbacRepo := newPgxRBACRepository(dbPool)

	return portsrepo.RepositoryProvider{
		RequestRepo:    requestRepo,
		LedgerRepo:     ledgerRepo,
		TransitionRepo: ledgerRepo,
		RBACRepo:       rbacRepo,
		OrgUnitRepo:    rbacRepo,
		Health:         &requestRepo.BaseRepository,
	}
}

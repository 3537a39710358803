package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	RequestRepo    RequestRepositoryFacade
	LedgerRepo     LedgerReader
	TransitionRepo UnitOfWork
	RBACRepo       RBACRepositoryFacade
	OrgUnitRepo    OrgUnitReader
	Health         HealthChecker
}

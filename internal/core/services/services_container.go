package services

import (
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/SscSPs/approval_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Settings from cfg are applied first; opts add collaborators such as the cache and notifier.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, registry *workflow.Registry, opts ...ServiceOption) *portssvc.ServiceContainer {
	all := make([]ServiceOption, 0, len(opts)+2)
	if cfg != nil {
		all = append(all, WithStoreTimeout(cfg.StoreTimeout), WithBatchConcurrency(cfg.BatchConcurrency))
	}
	all = append(all, opts...)

	container := &portssvc.ServiceContainer{}

	// Permission resolution first since the engine and batch processor depend on it
	container.Permissions = NewPermissionService(repos.RBACRepo, all...)
	container.Workflow = NewWorkflowService(registry, repos, container.Permissions, all...)
	container.Batch = NewBatchService(repos.RequestRepo, container.Workflow, container.Permissions, all...)
	container.Ledger = NewLedgerService(repos.RequestRepo, repos.LedgerRepo, all...)
	container.Reconciler = NewReconcileService(registry, repos, all...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.PermissionSvcFacade = (*permissionService)(nil)
	_ portssvc.WorkflowSvcFacade   = (*workflowService)(nil)
	_ portssvc.BatchProcessorSvc   = (*batchService)(nil)
)

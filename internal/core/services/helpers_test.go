package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/core/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	orgUnit   = "ou-finance"
	applicant = "alice"
	lowOne    = "bob"     // reimbursement:approve:low:1
	lowTwo    = "carol"   // reimbursement:approve:low:2
	highOne   = "dave"    // reimbursement:approve:high:1
	superUser = "root"    // all
	outsider  = "mallory" // no roles
)

// recordingNotifier captures emitted events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e domain.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) Events() []domain.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.NotificationEvent(nil), n.events...)
}

func seedStore() *memory.Store {
	store := memory.New()
	store.AddOrgUnit(orgUnit)
	store.AddUser(applicant)
	store.AddUser(outsider)
	store.Grant(lowOne, "reimb_low_1", "reimbursement:approve:low:1")
	store.Grant(lowTwo, "reimb_low_2", "reimbursement:approve:low:2")
	store.Grant(highOne, "reimb_high_1", "reimbursement:approve:high:1")
	store.Grant(superUser, "super_admin", domain.PermissionWildcard)
	return store
}

func newContainer(store *memory.Store, opts ...services.ServiceOption) *portssvc.ServiceContainer {
	return services.NewServiceContainer(nil, store.Provider(), workflow.Default(), opts...)
}

func createDraft(t *testing.T, svc portssvc.WorkflowSvcFacade, amount int64) *domain.Request {
	t.Helper()
	req, err := svc.CreateDraft(context.Background(), applicant, dto.CreateRequestRequest{
		RequestType: "reimbursement",
		Amount:      decimal.NewFromInt(amount),
		OrgUnitID:   orgUnit,
	})
	require.NoError(t, err)
	return req
}

func submitted(t *testing.T, svc portssvc.WorkflowSvcFacade, amount int64) *domain.Request {
	t.Helper()
	draft := createDraft(t, svc, amount)
	req, err := svc.Submit(context.Background(), draft.RequestID, applicant)
	require.NoError(t, err)
	return req
}

func ptr[T any](v T) *T { return &v }

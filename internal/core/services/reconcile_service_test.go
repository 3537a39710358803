package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strandRecord appends a decision without moving the status, which is what a
// crash between the two writes of a non-atomic store would leave behind.
func strandRecord(t *testing.T, store interface {
	ApplyTransition(context.Context, portsrepo.Transition) (*domain.Request, error)
}, req *domain.Request, to domain.RequestStatus) {
	t.Helper()
	now := time.Now().UTC()
	_, err := store.ApplyTransition(context.Background(), portsrepo.Transition{
		Change: domain.StatusChange{RequestID: req.RequestID, From: req.Status, To: req.Status, At: now},
		Record: &domain.ApprovalRecord{
			RecordID:        "stranded",
			RequestID:       req.RequestID,
			ActorID:         lowOne,
			StageKey:        string(req.Status),
			Decision:        domain.DecisionApproved,
			ResultingStatus: to,
			Timestamp:       now,
		},
	})
	require.NoError(t, err)
}

func TestReconcileRollsStatusForward(t *testing.T) {
	store := seedStore()
	svc := newContainer(store)
	ctx := context.Background()

	req := submitted(t, svc.Workflow, 25000)
	strandRecord(t, store, req, "low_amount_stage_2")

	outcome, err := svc.Reconciler.Reconcile(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconcileRolledForward, outcome.Action)
	assert.Equal(t, domain.RequestStatus("low_amount_stage_2"), outcome.StatusAfter)

	current, err := svc.Workflow.GetRequest(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatus("low_amount_stage_2"), current.Status)

	again, err := svc.Reconciler.Reconcile(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconcileConsistent, again.Action)
}

func TestReconcileAllReportsUnrepairable(t *testing.T) {
	store := seedStore()
	svc := newContainer(store)
	ctx := context.Background()

	healthy := submitted(t, svc.Workflow, 100)
	_, err := svc.Workflow.Approve(ctx, healthy.RequestID, lowOne, nil)
	require.NoError(t, err)

	trailing := submitted(t, svc.Workflow, 200)
	strandRecord(t, store, trailing, domain.StatusApproved)

	odd := submitted(t, svc.Workflow, 300)
	// A record whose stage is not the current status cannot be replayed.
	_, err = store.ApplyTransition(ctx, portsrepo.Transition{
		Change: domain.StatusChange{RequestID: odd.RequestID, From: odd.Status, To: odd.Status, At: time.Now()},
		Record: &domain.ApprovalRecord{
			RecordID:        "foreign",
			RequestID:       odd.RequestID,
			ActorID:         superUser,
			StageKey:        "high_amount_stage_2",
			Decision:        domain.DecisionApproved,
			ResultingStatus: "high_amount_stage_3",
			Timestamp:       time.Now(),
		},
	})
	require.NoError(t, err)

	report, err := svc.Reconciler.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.RolledForward)
	require.Len(t, report.Unrepairable, 1)
	assert.Equal(t, odd.RequestID, report.Unrepairable[0].RequestID)

	current, err := svc.Workflow.GetRequest(ctx, trailing.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, current.Status)
	assert.NotNil(t, current.CompletedAt)
}

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPending(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.SaveRequest(context.Background(), domain.Request{
		RequestID:   id,
		RequestType: "reimbursement",
		Amount:      decimal.NewFromInt(100),
		ApplicantID: "applicant",
		OrgUnitID:   "ou-1",
		Status:      "low_amount_stage_1",
		Branch:      domain.BranchLow,
		CreatedAt:   now,
		SubmittedAt: &now,
	}))
}

func approvalTransition(id string, from, to domain.RequestStatus) portsrepo.Transition {
	return portsrepo.Transition{
		Change: domain.StatusChange{RequestID: id, From: from, To: to, At: time.Now().UTC()},
		Record: &domain.ApprovalRecord{
			RecordID:        "rec-" + string(to),
			RequestID:       id,
			ActorID:         "approver",
			StageKey:        string(from),
			Decision:        domain.DecisionApproved,
			ResultingStatus: to,
			Timestamp:       time.Now().UTC(),
		},
	}
}

func TestApplyTransitionAssignsSequence(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPending(t, s, "r1")

	t1 := approvalTransition("r1", "low_amount_stage_1", "low_amount_stage_2")
	updated, err := s.ApplyTransition(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatus("low_amount_stage_2"), updated.Status)
	assert.Equal(t, int64(1), t1.Record.SequenceNumber)

	t2 := approvalTransition("r1", "low_amount_stage_2", domain.StatusApproved)
	_, err = s.ApplyTransition(ctx, t2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), t2.Record.SequenceNumber)

	records, err := s.ListRecords(ctx, "r1", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	page, err := s.ListRecords(ctx, "r1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].SequenceNumber)

	latest, err := s.FindLatestRecord(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, latest.ResultingStatus)
}

func TestApplyTransitionStaleLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPending(t, s, "r1")

	_, err := s.ApplyTransition(ctx, approvalTransition("r1", "low_amount_stage_2", domain.StatusApproved))
	assert.ErrorIs(t, err, apperrors.ErrStaleState)

	records, err := s.ListRecords(ctx, "r1", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestApplyTransitionLedgerFault(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPending(t, s, "r1")
	s.SetLedgerFault(func(domain.ApprovalRecord) error { return errors.New("disk full") })

	_, err := s.ApplyTransition(ctx, approvalTransition("r1", "low_amount_stage_1", "low_amount_stage_2"))
	assert.ErrorIs(t, err, apperrors.ErrLedgerWrite)

	r, err := s.FindRequestByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatus("low_amount_stage_1"), r.Status)
}

func TestPermissionCodesUnionActiveAssignments(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.Grant("u1", "approver_low", "reimbursement:approve:low:1", "shared")
	s.Grant("u1", "approver_high", "reimbursement:approve:high:1", "shared")

	codes, err := s.FindPermissionCodesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reimbursement:approve:high:1", "reimbursement:approve:low:1", "shared"}, codes)

	require.NoError(t, s.DeactivateAssignment(ctx, "u1", "approver_high", "admin", time.Now()))
	codes, err = s.FindPermissionCodesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reimbursement:approve:low:1", "shared"}, codes)

	err = s.DeactivateAssignment(ctx, "u1", "approver_high", "admin", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplyTransitionAmountPrecondition(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Now().UTC()
	require.NoError(t, s.SaveRequest(ctx, domain.Request{
		RequestID: "r1", RequestType: "reimbursement", Amount: decimal.NewFromInt(50000),
		ApplicantID: "applicant", OrgUnitID: "ou-1", Status: domain.StatusDraft, CreatedAt: now,
	}))

	read := decimal.NewFromInt(25000)
	change := domain.StatusChange{
		RequestID: "r1", From: domain.StatusDraft, To: "low_amount_stage_1",
		Branch: domain.BranchLow, SubmittedAt: &now, At: now, Amount: &read,
	}
	_, err := s.ApplyTransition(ctx, portsrepo.Transition{Change: change})
	assert.ErrorIs(t, err, apperrors.ErrStaleState)

	r, err := s.FindRequestByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, r.Status)

	read = decimal.RequireFromString("50000.00")
	change.To, change.Branch = "high_amount_stage_1", domain.BranchHigh
	updated, err := s.ApplyTransition(ctx, portsrepo.Transition{Change: change})
	require.NoError(t, err)
	assert.Equal(t, domain.BranchHigh, updated.Branch)
}

func TestSeedDefaultRoles(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.SeedDefaultRoles()

	role, err := s.FindRoleByCode(ctx, "reimbursement_high_3")
	require.NoError(t, err)
	assert.Equal(t, []string{"reimbursement:approve:high:3"}, role.Permissions)

	role, err = s.FindRoleByCode(ctx, "super_admin")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.PermissionWildcard}, role.Permissions)
}

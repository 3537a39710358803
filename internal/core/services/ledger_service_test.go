package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq func(func(domain.ApprovalRecord, error) bool)) []domain.ApprovalRecord {
	t.Helper()
	var out []domain.ApprovalRecord
	for r, err := range seq {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestHistoryIsLazyAndRestartable(t *testing.T) {
	store := seedStore()
	svc := newContainer(store, services.WithHistoryPageSize(1))
	ctx := context.Background()

	req := submitted(t, svc.Workflow, 90000)
	for i := 0; i < 3; i++ {
		_, err := svc.Workflow.Approve(ctx, req.RequestID, superUser, nil)
		require.NoError(t, err)
	}

	history := svc.Ledger.History(ctx, req.RequestID)
	first := collect(t, history)
	second := collect(t, history)
	require.Len(t, first, 3)
	assert.Equal(t, first, second, "ranging again restarts from the first record")

	// Stopping early is honoured.
	taken := 0
	for range history {
		taken++
		break
	}
	assert.Equal(t, 1, taken)
}

func TestHistoryUnknownRequest(t *testing.T) {
	svc := newContainer(seedStore())

	var errs []error
	for _, err := range svc.Ledger.History(context.Background(), "missing") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperrors.ErrNotFound)
}

func TestListHistoryPaging(t *testing.T) {
	svc := newContainer(seedStore())
	ctx := context.Background()

	req := submitted(t, svc.Workflow, 90000)
	for i := 0; i < 3; i++ {
		_, err := svc.Workflow.Approve(ctx, req.RequestID, superUser, nil)
		require.NoError(t, err)
	}

	page1, err := svc.Ledger.ListHistory(ctx, req.RequestID, dto.ListHistoryParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Records, 2)
	require.NotNil(t, page1.NextToken)

	page2, err := svc.Ledger.ListHistory(ctx, req.RequestID, dto.ListHistoryParams{Limit: 2, NextToken: page1.NextToken})
	require.NoError(t, err)
	require.Len(t, page2.Records, 1)
	assert.Nil(t, page2.NextToken)
	assert.Equal(t, int64(3), page2.Records[0].SequenceNumber)

	_, err = svc.Ledger.ListHistory(ctx, req.RequestID, dto.ListHistoryParams{NextToken: ptr("garbage")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHistoryPropertyMonotonicAndStable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("sequence numbers strictly increase and terminal history is frozen", prop.ForAll(
		func(amount int64, rejectAt int) bool {
			store := seedStore()
			svc := newContainer(store, services.WithHistoryPageSize(2))
			ctx := context.Background()

			req := submitted(t, svc.Workflow, amount)
			for step := 0; ; step++ {
				current, err := svc.Workflow.GetRequest(ctx, req.RequestID)
				if err != nil {
					return false
				}
				if current.Status.IsTerminal() {
					break
				}
				if step == rejectAt {
					_, err = svc.Workflow.Reject(ctx, req.RequestID, superUser, "stop")
				} else {
					_, err = svc.Workflow.Approve(ctx, req.RequestID, superUser, nil)
				}
				if err != nil {
					return false
				}
			}

			before := collect(t, svc.Ledger.History(ctx, req.RequestID))
			for i := 1; i < len(before); i++ {
				if before[i].SequenceNumber <= before[i-1].SequenceNumber {
					return false
				}
			}

			// Further attempts on a terminal request change nothing.
			_, _ = svc.Workflow.Approve(ctx, req.RequestID, superUser, nil)
			_, _ = svc.Workflow.Reject(ctx, req.RequestID, superUser, "again")
			after := collect(t, svc.Ledger.History(ctx, req.RequestID))
			return assert.ObjectsAreEqual(before, after)
		},
		gen.Int64Range(1, 100000),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

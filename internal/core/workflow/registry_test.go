package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := workflow.Default()

	assert.Equal(t, []string{"payment", "reimbursement"}, reg.RequestTypes())

	def, err := reg.Definition("reimbursement")
	require.NoError(t, err)
	assert.True(t, def.BranchThreshold.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, "low_amount_stage_1", def.FirstStage(domain.BranchLow).Key)
	assert.Equal(t, "high_amount_stage_1", def.FirstStage(domain.BranchHigh).Key)

	_, err = reg.Definition("vehicle_booking")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStagesRequiring(t *testing.T) {
	reg := workflow.Default()

	stages := reg.StagesRequiring(domain.NewPermissionSet("reimbursement:approve:low:2", "payment:release:cashier"))
	assert.ElementsMatch(t, []domain.RequestStatus{"low_amount_stage_2", "payment_cashier", "payment_high_cashier"}, stages)

	assert.Len(t, reg.StagesRequiring(domain.NewPermissionSet(domain.PermissionWildcard)), len(reg.PendingStatuses()))
	assert.Empty(t, reg.StagesRequiring(domain.PermissionSet{}))
}

func TestDefaultRolesCoverEveryStage(t *testing.T) {
	reg := workflow.Default()

	var codes []string
	for _, role := range domain.DefaultRoles() {
		for _, p := range role.Permissions {
			if p != domain.PermissionWildcard {
				codes = append(codes, p)
			}
		}
	}
	assert.ElementsMatch(t, reg.PendingStatuses(), reg.StagesRequiring(domain.NewPermissionSet(codes...)))
}

func TestParseDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "workflows: [\n"},
		{"empty", "workflows: []\n"},
		{"bad threshold", `
workflows:
  - requestType: t
    branchThreshold: lots
    lowAmountStages: [{key: a, requiredPermission: p, nextKey: approved}]
    highAmountStages: [{key: b, requiredPermission: p, nextKey: approved}]
`},
		{"stage key shared by two types", `
workflows:
  - requestType: t1
    branchThreshold: "10"
    lowAmountStages: [{key: a, requiredPermission: p, nextKey: approved}]
    highAmountStages: [{key: b, requiredPermission: p, nextKey: approved}]
  - requestType: t2
    branchThreshold: "10"
    lowAmountStages: [{key: a, requiredPermission: p, nextKey: approved}]
    highAmountStages: [{key: c, requiredPermission: p, nextKey: approved}]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := workflow.ParseDefinitions([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinitionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workflows:
  - requestType: licence
    branchThreshold: "0"
    lowAmountStages: [{key: licence_review, requiredPermission: "licence:approve", nextKey: approved}]
    highAmountStages: [{key: licence_board, requiredPermission: "licence:board", nextKey: approved}]
`), 0o600))

	reg, err := workflow.LoadDefinitions(path)
	require.NoError(t, err)
	def, err := reg.Definition("licence")
	require.NoError(t, err)
	assert.Equal(t, domain.BranchHigh, def.SelectBranch(decimal.Zero), "zero threshold routes everything high")

	_, err = workflow.LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Stage is one step of an approval chain. NextKey is either another stage key
// in the same list or StatusApproved.
type Stage struct {
	Key                string `json:"key" yaml:"key" validate:"required"`
	RequiredPermission string `json:"requiredPermission" yaml:"requiredPermission" validate:"required"`
	NextKey            string `json:"nextKey" yaml:"nextKey" validate:"required"`
}

// IsFinal reports whether approving at this stage completes the request.
func (s Stage) IsFinal() bool {
	return RequestStatus(s.NextKey) == StatusApproved
}

// WorkflowDefinition is the declarative approval configuration for one request type.
type WorkflowDefinition struct {
	RequestType      string          `json:"requestType" validate:"required"`
	BranchThreshold  decimal.Decimal `json:"branchThreshold"`
	HighAmountStages []Stage         `json:"highAmountStages" validate:"required,min=1,dive"`
	LowAmountStages  []Stage         `json:"lowAmountStages" validate:"required,min=1,dive"`
}

var definitionValidator = validator.New()

// Validate checks field presence and that both chains are well formed: unique
// keys, no reserved status used as a key, every NextKey resolvable, and the
// chain reaching approved from its first stage without cycles.
func (d *WorkflowDefinition) Validate() error {
	if err := definitionValidator.Struct(d); err != nil {
		return fmt.Errorf("workflow %q: %w", d.RequestType, err)
	}
	if d.BranchThreshold.IsNegative() {
		return fmt.Errorf("workflow %q: branch threshold must not be negative", d.RequestType)
	}

	branches := []Branch{BranchHigh, BranchLow}
	seen := make(map[string]Branch)
	for _, branch := range branches {
		for _, s := range d.Stages(branch) {
			if RequestStatus(s.Key).IsReserved() {
				return fmt.Errorf("workflow %q: stage key %q is a reserved status", d.RequestType, s.Key)
			}
			if other, dup := seen[s.Key]; dup {
				return fmt.Errorf("workflow %q: stage key %q defined twice (%s, %s)", d.RequestType, s.Key, other, branch)
			}
			seen[s.Key] = branch
		}
	}
	// Keys are unique across both chains before either chain is walked.
	for _, branch := range branches {
		if err := checkChain(d.Stages(branch)); err != nil {
			return fmt.Errorf("workflow %q %s-amount chain: %w", d.RequestType, branch, err)
		}
	}
	return nil
}

func checkChain(stages []Stage) error {
	byKey := make(map[string]Stage, len(stages))
	for _, s := range stages {
		byKey[s.Key] = s
	}
	visited := make(map[string]bool, len(stages))
	cur := stages[0]
	for {
		if visited[cur.Key] {
			return fmt.Errorf("cycle at stage %q", cur.Key)
		}
		visited[cur.Key] = true
		if cur.IsFinal() {
			break
		}
		next, ok := byKey[cur.NextKey]
		if !ok {
			return fmt.Errorf("stage %q points to unknown stage %q", cur.Key, cur.NextKey)
		}
		cur = next
	}
	if len(visited) != len(stages) {
		return fmt.Errorf("%d stage(s) unreachable from %q", len(stages)-len(visited), stages[0].Key)
	}
	return nil
}

// SelectBranch picks the chain for amount. Amounts at or above the threshold go high.
func (d *WorkflowDefinition) SelectBranch(amount decimal.Decimal) Branch {
	if amount.GreaterThanOrEqual(d.BranchThreshold) {
		return BranchHigh
	}
	return BranchLow
}

// Stages returns the ordered stage list for branch.
func (d *WorkflowDefinition) Stages(branch Branch) []Stage {
	if branch == BranchHigh {
		return d.HighAmountStages
	}
	return d.LowAmountStages
}

// FirstStage returns the entry stage of branch.
func (d *WorkflowDefinition) FirstStage(branch Branch) Stage {
	return d.Stages(branch)[0]
}

// StageFor finds the stage definition for key. When branch is empty both
// chains are searched.
func (d *WorkflowDefinition) StageFor(branch Branch, key RequestStatus) (Stage, bool) {
	search := [][]Stage{d.Stages(branch)}
	if branch == "" {
		search = [][]Stage{d.HighAmountStages, d.LowAmountStages}
	}
	for _, stages := range search {
		for _, s := range stages {
			if s.Key == string(key) {
				return s, true
			}
		}
	}
	return Stage{}, false
}

// IsKnownStatus reports whether status is reachable under this definition.
func (d *WorkflowDefinition) IsKnownStatus(status RequestStatus) bool {
	if status.IsReserved() {
		return true
	}
	_, ok := d.StageFor("", status)
	return ok
}

// Package workflow holds the WorkflowDefinitions known to the engine, keyed by
// request type, and loads them from YAML.
package workflow

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_workflows.yaml
var defaultDefinitions []byte

// Registry is an immutable set of validated definitions. Stage keys are
// unique across the whole registry so a status maps to exactly one stage.
type Registry struct {
	defs      map[string]*domain.WorkflowDefinition
	stageType map[string]string
}

// NewRegistry validates defs and indexes them by request type.
func NewRegistry(defs ...*domain.WorkflowDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no workflow definitions")
	}
	r := &Registry{
		defs:      make(map[string]*domain.WorkflowDefinition, len(defs)),
		stageType: make(map[string]string),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.defs[d.RequestType]; dup {
			return nil, fmt.Errorf("workflow %q defined twice", d.RequestType)
		}
		r.defs[d.RequestType] = d
		for _, stages := range [][]domain.Stage{d.HighAmountStages, d.LowAmountStages} {
			for _, s := range stages {
				if other, dup := r.stageType[s.Key]; dup {
					return nil, fmt.Errorf("stage key %q used by both %q and %q", s.Key, other, d.RequestType)
				}
				r.stageType[s.Key] = d.RequestType
			}
		}
	}
	return r, nil
}

// Definition returns the definition bound to requestType.
func (r *Registry) Definition(requestType string) (*domain.WorkflowDefinition, error) {
	d, ok := r.defs[requestType]
	if !ok {
		return nil, apperrors.NewValidationFailedError("unknown request type", "request_type", requestType)
	}
	return d, nil
}

// RequestTypes lists the configured request types in sorted order.
func (r *Registry) RequestTypes() []string {
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// PendingStatuses returns every stage key of every definition, sorted.
func (r *Registry) PendingStatuses() []domain.RequestStatus {
	out := make([]domain.RequestStatus, 0, len(r.stageType))
	for k := range r.stageType {
		out = append(out, domain.RequestStatus(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StagesRequiring returns the stage keys whose required permission perms satisfies.
func (r *Registry) StagesRequiring(perms domain.PermissionSet) []domain.RequestStatus {
	var out []domain.RequestStatus
	for _, t := range r.RequestTypes() {
		d := r.defs[t]
		for _, stages := range [][]domain.Stage{d.HighAmountStages, d.LowAmountStages} {
			for _, s := range stages {
				if perms.Has(s.RequiredPermission) {
					out = append(out, domain.RequestStatus(s.Key))
				}
			}
		}
	}
	return out
}

type fileStage struct {
	Key                string `yaml:"key"`
	RequiredPermission string `yaml:"requiredPermission"`
	NextKey            string `yaml:"nextKey"`
}

type fileDefinition struct {
	RequestType      string      `yaml:"requestType"`
	BranchThreshold  string      `yaml:"branchThreshold"`
	HighAmountStages []fileStage `yaml:"highAmountStages"`
	LowAmountStages  []fileStage `yaml:"lowAmountStages"`
}

type file struct {
	Workflows []fileDefinition `yaml:"workflows"`
}

// ParseDefinitions decodes a YAML document into a validated Registry.
func ParseDefinitions(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse workflow definitions: %w", err)
	}
	defs := make([]*domain.WorkflowDefinition, 0, len(f.Workflows))
	for _, fd := range f.Workflows {
		threshold, err := decimal.NewFromString(fd.BranchThreshold)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: invalid branchThreshold %q: %w", fd.RequestType, fd.BranchThreshold, err)
		}
		defs = append(defs, &domain.WorkflowDefinition{
			RequestType:      fd.RequestType,
			BranchThreshold:  threshold,
			HighAmountStages: toStages(fd.HighAmountStages),
			LowAmountStages:  toStages(fd.LowAmountStages),
		})
	}
	return NewRegistry(defs...)
}

func toStages(in []fileStage) []domain.Stage {
	out := make([]domain.Stage, len(in))
	for i, s := range in {
		out[i] = domain.Stage{Key: s.Key, RequiredPermission: s.RequiredPermission, NextKey: s.NextKey}
	}
	return out
}

// LoadDefinitions reads path, or the built-in definitions when path is empty.
func LoadDefinitions(path string) (*Registry, error) {
	if path == "" {
		return ParseDefinitions(defaultDefinitions)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow definitions %s: %w", path, err)
	}
	return ParseDefinitions(data)
}

// Default returns the built-in definitions. It panics if they are invalid.
func Default() *Registry {
	r, err := ParseDefinitions(defaultDefinitions)
	if err != nil {
		panic(err)
	}
	return r
}

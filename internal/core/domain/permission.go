package domain

import (
	"encoding/json"
	"sort"
)

// PermissionWildcard is held by super-administrators and satisfies every check.
const PermissionWildcard = "all"

// PermissionManageRoles guards role assignment maintenance.
const PermissionManageRoles = "rbac:manage"

// Permission is a single grantable capability.
type Permission struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Role groups permission codes.
type Role struct {
	Code        string   `json:"code"`
	Permissions []string `json:"permissions"`
}

// DefaultRoles mirrors the roles seeded by the Postgres migrations.
func DefaultRoles() []Role {
	return []Role{
		{Code: "super_admin", Permissions: []string{PermissionWildcard}},
		{Code: "rbac_admin", Permissions: []string{PermissionManageRoles}},
		{Code: "reimbursement_low_1", Permissions: []string{"reimbursement:approve:low:1"}},
		{Code: "reimbursement_low_2", Permissions: []string{"reimbursement:approve:low:2"}},
		{Code: "reimbursement_high_1", Permissions: []string{"reimbursement:approve:high:1"}},
		{Code: "reimbursement_high_2", Permissions: []string{"reimbursement:approve:high:2"}},
		{Code: "reimbursement_high_3", Permissions: []string{"reimbursement:approve:high:3"}},
		{Code: "payment_preliminary", Permissions: []string{"payment:approve:preliminary"}},
		{Code: "payment_manager", Permissions: []string{"payment:approve:manager"}},
		{Code: "payment_director", Permissions: []string{"payment:approve:director"}},
		{Code: "payment_cashier", Permissions: []string{"payment:release:cashier"}},
	}
}

// Assignment binds a user to a role.
type Assignment struct {
	UserID   string `json:"userID"`
	RoleCode string `json:"roleCode"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// PermissionSet is an immutable set of permission codes resolved for one user.
// The zero value is an empty set, meaning "no authority".
type PermissionSet struct {
	codes map[string]struct{}
}

// NewPermissionSet builds a set, ignoring empty codes and duplicates.
func NewPermissionSet(codes ...string) PermissionSet {
	set := PermissionSet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if c == "" {
			continue
		}
		set.codes[c] = struct{}{}
	}
	return set
}

// Has reports whether code is in the set or the set holds the wildcard.
func (p PermissionSet) Has(code string) bool {
	if _, ok := p.codes[PermissionWildcard]; ok {
		return true
	}
	_, ok := p.codes[code]
	return ok
}

// HasAll reports whether every code is satisfied.
func (p PermissionSet) HasAll(codes ...string) bool {
	for _, c := range codes {
		if !p.Has(c) {
			return false
		}
	}
	return true
}

func (p PermissionSet) IsSuperAdmin() bool {
	_, ok := p.codes[PermissionWildcard]
	return ok
}

func (p PermissionSet) Len() int {
	return len(p.codes)
}

func (p PermissionSet) IsEmpty() bool {
	return len(p.codes) == 0
}

// Codes returns the members in sorted order.
func (p PermissionSet) Codes() []string {
	out := make([]string, 0, len(p.codes))
	for c := range p.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (p PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Codes())
}

func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*p = NewPermissionSet(codes...)
	return nil
}

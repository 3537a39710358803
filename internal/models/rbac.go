package models

import "github.com/SscSPs/approval_engine/internal/core/domain"

// RoleAssignment is the row shape of role_assignments.
type RoleAssignment struct {
	UserID   string `db:"user_id"`
	RoleCode string `db:"role_code"`
	IsActive bool   `db:"is_active"`
	AuditFields
}

func ToModelRoleAssignment(d domain.Assignment) RoleAssignment {
	return RoleAssignment{
		UserID:   d.UserID,
		RoleCode: d.RoleCode,
		IsActive: d.IsActive,
		AuditFields: AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

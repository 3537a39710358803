package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// RBACReader defines the read-only joins used to resolve permissions
type RBACReader interface {
	// UserExists reports whether userID is a known identity.
	UserExists(ctx context.Context, userID string) (bool, error)

	// FindPermissionCodesByUser returns the distinct permission codes granted through the
	// user's active role assignments. An empty slice means no authority.
	FindPermissionCodesByUser(ctx context.Context, userID string) ([]string, error)

	// FindRoleByCode retrieves a role with its permission codes.
	FindRoleByCode(ctx context.Context, roleCode string) (*domain.Role, error)
}

// RBACWriter maintains role assignments
type RBACWriter interface {
	// SaveAssignment creates or reactivates an assignment.
	SaveAssignment(ctx context.Context, assignment domain.Assignment) error

	// DeactivateAssignment marks an active assignment inactive. Returns NotFound when the
	// user holds no active assignment of roleCode.
	DeactivateAssignment(ctx context.Context, userID, roleCode, updatedBy string, updatedAt time.Time) error
}

// RBACRepositoryFacade combines the RBAC interfaces
type RBACRepositoryFacade interface {
	RBACReader
	RBACWriter
}

// OrgUnitReader validates organizational units referenced by requests
type OrgUnitReader interface {
	OrgUnitExists(ctx context.Context, orgUnitID string) (bool, error)
}

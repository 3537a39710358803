package services

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// PermissionResolverSvc resolves identities to permission sets
type PermissionResolverSvc interface {
	// ResolvePermissions returns the user's permission set, possibly from cache.
	// An empty set means no authority; unknown users yield a NotFound error.
	ResolvePermissions(ctx context.Context, userID string) (domain.PermissionSet, error)
}

// RoleManagerSvc maintains role assignments
type RoleManagerSvc interface {
	// AssignRole grants roleCode to userID. The actor needs rbac:manage.
	AssignRole(ctx context.Context, actorID, userID, roleCode string) error

	// RevokeRole removes roleCode from userID. The actor needs rbac:manage.
	RevokeRole(ctx context.Context, actorID, userID, roleCode string) error
}

// PermissionSvcFacade combines permission resolution and role maintenance
type PermissionSvcFacade interface {
	PermissionResolverSvc
	RoleManagerSvc
}

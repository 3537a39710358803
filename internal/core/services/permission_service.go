package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
)

// permissionService resolves and maintains role based permissions
type permissionService struct {
	BaseService
	rbacRepo portsrepo.RBACRepositoryFacade
	cache    ports.PermissionCache
}

// NewPermissionService creates the PermissionResolver. Without WithPermissionCache
// every call resolves against the store.
func NewPermissionService(rbacRepo portsrepo.RBACRepositoryFacade, opts ...ServiceOption) portssvc.PermissionSvcFacade {
	o := buildOptions(opts)
	return &permissionService{
		BaseService: newBaseService(o),
		rbacRepo:    rbacRepo,
		cache:       o.cache,
	}
}

var _ portssvc.PermissionSvcFacade = (*permissionService)(nil)

func (s *permissionService) ResolvePermissions(ctx context.Context, userID string) (domain.PermissionSet, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.PermissionSet{}, apperrors.NewValidationFailedError("user id is required")
	}
	if s.cache != nil {
		if set, ok := s.cache.Get(ctx, userID); ok {
			return set, nil
		}
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	exists, err := s.rbacRepo.UserExists(sctx, userID)
	if err != nil {
		return domain.PermissionSet{}, s.storeError(ctx, err, "failed to look up user", "user_id", userID)
	}
	if !exists {
		return domain.PermissionSet{}, apperrors.NewNotFoundError("actor identity not found", "user_id", userID)
	}

	codes, err := s.rbacRepo.FindPermissionCodesByUser(sctx, userID)
	if err != nil {
		return domain.PermissionSet{}, s.storeError(ctx, err, "failed to resolve permissions", "user_id", userID)
	}

	set := domain.NewPermissionSet(codes...)
	if s.cache != nil {
		s.cache.Set(ctx, userID, set)
	}
	s.LogDebug(ctx, "Resolved permissions", slog.String("user_id", userID), slog.Int("count", set.Len()))
	return set, nil
}

func (s *permissionService) AssignRole(ctx context.Context, actorID, userID, roleCode string) error {
	if err := s.authorizeRoleChange(ctx, actorID, userID, roleCode); err != nil {
		return err
	}

	now := s.now()
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	err := s.rbacRepo.SaveAssignment(sctx, domain.Assignment{
		UserID:   userID,
		RoleCode: roleCode,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	})
	if err != nil {
		return s.storeError(ctx, err, "failed to save role assignment", "user_id", userID, "role_code", roleCode)
	}

	s.invalidate(ctx, userID)
	s.LogInfo(ctx, "Role assigned",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("role_code", roleCode))
	return nil
}

func (s *permissionService) RevokeRole(ctx context.Context, actorID, userID, roleCode string) error {
	if err := s.authorizeRoleChange(ctx, actorID, userID, roleCode); err != nil {
		return err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.rbacRepo.DeactivateAssignment(sctx, userID, roleCode, actorID, s.now()); err != nil {
		return s.storeError(ctx, err, "failed to revoke role assignment", "user_id", userID, "role_code", roleCode)
	}

	s.invalidate(ctx, userID)
	s.LogInfo(ctx, "Role revoked",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("role_code", roleCode))
	return nil
}

// authorizeRoleChange checks input, the actor's authority and that both the
// target user and the role exist.
func (s *permissionService) authorizeRoleChange(ctx context.Context, actorID, userID, roleCode string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roleCode) == "" {
		return apperrors.NewValidationFailedError("user id and role code are required")
	}

	actorPerms, err := s.ResolvePermissions(ctx, actorID)
	if err != nil {
		return err
	}
	if !actorPerms.Has(domain.PermissionManageRoles) {
		s.LogWarn(ctx, "Role change denied", slog.String("actor_id", actorID), slog.String("user_id", userID))
		return apperrors.NewPermissionDeniedError("actor may not manage role assignments",
			"required_permission", domain.PermissionManageRoles)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	exists, err := s.rbacRepo.UserExists(sctx, userID)
	if err != nil {
		return s.storeError(ctx, err, "failed to look up user", "user_id", userID)
	}
	if !exists {
		return apperrors.NewNotFoundError("user not found", "user_id", userID)
	}
	if _, err := s.rbacRepo.FindRoleByCode(sctx, roleCode); err != nil {
		return s.storeError(ctx, err, "failed to look up role", "role_code", roleCode)
	}
	return nil
}

func (s *permissionService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

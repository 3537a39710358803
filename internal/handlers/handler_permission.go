package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// permissionHandler exposes the caller's resolved permissions and role maintenance.
type permissionHandler struct {
	permissionService portssvc.PermissionSvcFacade
	workflowService   portssvc.PendingQueueSvc
}

func registerPermissionRoutes(rg *gin.RouterGroup, ps portssvc.PermissionSvcFacade, ws portssvc.PendingQueueSvc, mutating ...gin.HandlerFunc) {
	h := &permissionHandler{permissionService: ps, workflowService: ws}

	rg.GET("/me/permissions", h.getMyPermissions)
	rg.GET("/approvals/pending", h.listPending)

	users := rg.Group("/users/:userID/roles", mutating...)
	{
		users.PUT("/:roleCode", h.assignRole)
		users.DELETE("/:roleCode", h.revokeRole)
	}
}

// getMyPermissions godoc
// @Summary Resolve the caller's permissions
// @Tags permissions
// @Produce json
// @Success 200 {object} dto.PermissionsResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown identity"
// @Security BearerAuth
// @Router /me/permissions [get]
func (h *permissionHandler) getMyPermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	set, err := h.permissionService.ResolvePermissions(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve permissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToPermissionsResponse(actorID, set))
}

// listPending godoc
// @Summary List requests waiting on the caller
// @Description Requests whose current stage requires a permission the caller holds, oldest first
// @Tags permissions
// @Produce json
// @Param limit query int false "Maximum results (default 50, max 200)"
// @Success 200 {object} dto.ListRequestsResponse
// @Security BearerAuth
// @Router /approvals/pending [get]
func (h *permissionHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListPendingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	requests, err := h.workflowService.ListPendingForActor(c.Request.Context(), actorID, params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list pending requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(requests))
}

// assignRole godoc
// @Summary Assign a role to a user
// @Description Requires rbac:manage. The user's cached permissions are dropped.
// @Tags permissions
// @Param userID path string true "User ID"
// @Param roleCode path string true "Role code"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{userID}/roles/{roleCode} [put]
func (h *permissionHandler) assignRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	userID, roleCode := c.Param("userID"), c.Param("roleCode")
	if err := h.permissionService.AssignRole(c.Request.Context(), actorID, userID, roleCode); err != nil {
		respondError(c, logger, err, "Failed to assign role")
		return
	}
	logger.Info("Role assigned", slog.String("target_user_id", userID), slog.String("role_code", roleCode))
	c.Status(http.StatusNoContent)
}

// revokeRole godoc
// @Summary Revoke a role from a user
// @Tags permissions
// @Param userID path string true "User ID"
// @Param roleCode path string true "Role code"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{userID}/roles/{roleCode} [delete]
func (h *permissionHandler) revokeRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	userID, roleCode := c.Param("userID"), c.Param("roleCode")
	if err := h.permissionService.RevokeRole(c.Request.Context(), actorID, userID, roleCode); err != nil {
		respondError(c, logger, err, "Failed to revoke role")
		return
	}
	logger.Info("Role revoked", slog.String("target_user_id", userID), slog.String("role_code", roleCode))
	c.Status(http.StatusNoContent)
}

package dto

import "github.com/SscSPs/approval_engine/internal/core/domain"

// PermissionsResponse lists the permission codes resolved for a user.
type PermissionsResponse struct {
	UserID      string   `json:"userID"`
	Permissions []string `json:"permissions"`
	SuperAdmin  bool     `json:"superAdmin"`
}

// ToPermissionsResponse converts a resolved permission set.
func ToPermissionsResponse(userID string, set domain.PermissionSet) PermissionsResponse {
	return PermissionsResponse{
		UserID:      userID,
		Permissions: set.Codes(),
		SuperAdmin:  set.IsSuperAdmin(),
	}
}

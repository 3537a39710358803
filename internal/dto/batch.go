package dto

import (
	"net/http"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// BatchApproveRequest defines the body for approving several requests at once.
type BatchApproveRequest struct {
	RequestIDs []string `json:"requestIDs" binding:"required,min=1,max=200,dive,required"`
	Comment    *string  `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// BatchRejectRequest defines the body for rejecting several requests at once.
type BatchRejectRequest struct {
	RequestIDs []string `json:"requestIDs" binding:"required,min=1,max=200,dive,required"`
	Reason     string   `json:"reason" binding:"required,max=2000"`
}

// BatchStatusCode picks the HTTP status for a batch result: 200 when every
// item applied, 409 when the batch was refused as heterogeneous, 207 otherwise.
func BatchStatusCode(result *domain.BatchResult) int {
	if !result.HasErrors() {
		return http.StatusOK
	}
	if len(result.Applied) == 0 && len(result.Errors) == 1 && result.Errors[0].RequestID == "" &&
		result.Errors[0].ErrorKind == apperrors.KindHeterogeneousStatus {
		return http.StatusConflict
	}
	return http.StatusMultiStatus
}

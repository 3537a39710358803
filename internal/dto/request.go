package dto

import (
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRequestRequest defines the body for creating a draft request.
type CreateRequestRequest struct {
	RequestType string          `json:"requestType" binding:"required" example:"reimbursement"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"25000.00"`
	OrgUnitID   string          `json:"orgUnitID" binding:"required"`
}

// UpdateRequestRequest defines the body for editing a draft. Omitted fields are left unchanged.
type UpdateRequestRequest struct {
	Amount    *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	OrgUnitID *string          `json:"orgUnitID,omitempty"`
}

// ApproveRequest defines the optional body for approving a request.
type ApproveRequest struct {
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// RejectRequest defines the body for rejecting a request. Reason is mandatory.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// RequestResponse defines the data returned for a request.
type RequestResponse struct {
	RequestID     string          `json:"requestID"`
	RequestType   string          `json:"requestType"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	ApplicantID   string          `json:"applicantID"`
	OrgUnitID     string          `json:"orgUnitID"`
	Status        string          `json:"status"`
	Branch        string          `json:"branch,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ListRequestsResponse wraps a list of requests.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
}

// ToRequestResponse converts a domain.Request to RequestResponse DTO.
func ToRequestResponse(r *domain.Request) RequestResponse {
	return RequestResponse{
		RequestID:     r.RequestID,
		RequestType:   r.RequestType,
		Amount:        r.Amount,
		ApplicantID:   r.ApplicantID,
		OrgUnitID:     r.OrgUnitID,
		Status:        string(r.Status),
		Branch:        string(r.Branch),
		CreatedAt:     r.CreatedAt,
		SubmittedAt:   r.SubmittedAt,
		CompletedAt:   r.CompletedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

// ToListRequestsResponse converts a slice of domain.Request.
func ToListRequestsResponse(requests []domain.Request) ListRequestsResponse {
	out := make([]RequestResponse, len(requests))
	for i := range requests {
		out[i] = ToRequestResponse(&requests[i])
	}
	return ListRequestsResponse{Requests: out}
}

// ListPendingParams defines query parameters for the caller's pending queue.
type ListPendingParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

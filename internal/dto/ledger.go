package dto

import (
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// ApprovalRecordResponse defines the data returned for a ledger record.
type ApprovalRecordResponse struct {
	RecordID        string    `json:"recordID"`
	ActorID         string    `json:"actorID"`
	StageKey        string    `json:"stageKey"`
	Decision        string    `json:"decision"`
	Comment         *string   `json:"comment,omitempty"`
	ResultingStatus string    `json:"resultingStatus"`
	SequenceNumber  int64     `json:"sequenceNumber"`
	Timestamp       time.Time `json:"timestamp"`
}

// ListHistoryParams defines query parameters for paging a request's history.
type ListHistoryParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListHistoryResponse is one page of ledger records.
type ListHistoryResponse struct {
	RequestID string                   `json:"requestID"`
	Records   []ApprovalRecordResponse `json:"records"`
	NextToken *string                  `json:"nextToken,omitempty"`
}

// ToApprovalRecordResponse converts a domain.ApprovalRecord.
func ToApprovalRecordResponse(r domain.ApprovalRecord) ApprovalRecordResponse {
	return ApprovalRecordResponse{
		RecordID:        r.RecordID,
		ActorID:         r.ActorID,
		StageKey:        r.StageKey,
		Decision:        string(r.Decision),
		Comment:         r.Comment,
		ResultingStatus: string(r.ResultingStatus),
		SequenceNumber:  r.SequenceNumber,
		Timestamp:       r.Timestamp,
	}
}

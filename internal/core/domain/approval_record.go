package domain

import "time"

// Decision is the outcome recorded in the approval ledger.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// ApprovalRecord is one immutable ledger row. SequenceNumber is strictly
// increasing per request; rows are never updated or deleted.
type ApprovalRecord struct {
	RecordID        string        `json:"recordID"`        // Primary Key (UUID)
	RequestID       string        `json:"requestID"`       // FK -> requests.request_id
	ActorID         string        `json:"actorID"`         // Who decided
	StageKey        string        `json:"stageKey"`        // Status the decision was taken in
	Decision        Decision      `json:"decision"`        // approved | rejected
	Comment         *string       `json:"comment"`         // Nullable; required reason for rejections
	ResultingStatus RequestStatus `json:"resultingStatus"` // Status the request moved to
	SequenceNumber  int64         `json:"sequenceNumber"`  // 1-based, per request
	Timestamp       time.Time     `json:"timestamp"`
}

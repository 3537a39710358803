package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is either a stage key from the bound WorkflowDefinition or one
// of the fixed lifecycle values below.
type RequestStatus string

const (
	StatusDraft     RequestStatus = "draft"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

var reservedStatuses = map[RequestStatus]bool{
	StatusDraft:     true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCancelled: true,
}

// IsTerminal reports whether no further transitions are possible.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// IsReserved reports whether s is a lifecycle value rather than a stage key.
func (s RequestStatus) IsReserved() bool {
	return reservedStatuses[s]
}

// IsPending reports whether the request is sitting in an approval stage.
func (s RequestStatus) IsPending() bool {
	return s != "" && !s.IsReserved()
}

func (s RequestStatus) String() string {
	return string(s)
}

// Branch identifies which stage list a request was routed to at submission.
type Branch string

const (
	BranchHigh Branch = "high"
	BranchLow  Branch = "low"
)

// Request is a monetary approval request.
type Request struct {
	RequestID     string          `json:"requestID"`     // Primary Key (UUID)
	RequestType   string          `json:"requestType"`   // Selects the WorkflowDefinition
	Amount        decimal.Decimal `json:"amount"`        // >= 0, editable only while draft
	ApplicantID   string          `json:"applicantID"`   // FK -> users.user_id
	OrgUnitID     string          `json:"orgUnitID"`     // FK -> org_units.org_unit_id
	Status        RequestStatus   `json:"status"`        // draft, a stage key, or terminal
	Branch        Branch          `json:"branch"`        // Empty until submitted, then frozen
	CreatedAt     time.Time       `json:"createdAt"`     //
	SubmittedAt   *time.Time      `json:"submittedAt"`   // Nullable
	CompletedAt   *time.Time      `json:"completedAt"`   // Nullable, set on terminal status
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"` //
}

// StatusChange is a compare-and-swap status update. It only applies when the
// stored status still equals From.
type StatusChange struct {
	RequestID   string
	From        RequestStatus
	To          RequestStatus
	Branch      Branch     // Only set by submit
	SubmittedAt *time.Time // Only set by submit
	CompletedAt *time.Time // Set when To is terminal
	At          time.Time

	// Amount, when set, is a second precondition: the stored amount must
	// still equal it. Submit routes on the amount it read.
	Amount *decimal.Decimal
}

// AmountMatches reports whether stored satisfies the Amount precondition.
func (c StatusChange) AmountMatches(stored decimal.Decimal) bool {
	return c.Amount == nil || c.Amount.Equal(stored)
}

// Apply returns a copy of r with the change applied. It does not check From.
func (c StatusChange) Apply(r Request) Request {
	r.Status = c.To
	if c.Branch != "" {
		r.Branch = c.Branch
	}
	if c.SubmittedAt != nil {
		r.SubmittedAt = c.SubmittedAt
	}
	if c.CompletedAt != nil {
		r.CompletedAt = c.CompletedAt
	}
	r.LastUpdatedAt = c.At
	return r
}

// DraftUpdate carries optional edits to a draft request.
type DraftUpdate struct {
	Amount    *decimal.Decimal
	OrgUnitID *string
}

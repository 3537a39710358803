package domain

import "github.com/SscSPs/approval_engine/internal/apperrors"

// BatchItemError is the per-item failure captured by a batch transition.
// RequestID is empty for batch-wide precondition failures.
type BatchItemError struct {
	RequestID string              `json:"requestID,omitempty"`
	ErrorKind apperrors.ErrorKind `json:"errorKind"`
	Message   string              `json:"message"`
}

// BatchResult reports which requests were transitioned and which failed.
// Partial success is expected.
type BatchResult struct {
	Applied []string         `json:"applied"`
	Errors  []BatchItemError `json:"errors"`
}

// HasErrors reports whether any item or the batch precondition failed.
func (r BatchResult) HasErrors() bool {
	return len(r.Errors) > 0
}
